package handlers

import (
	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/chat"
)

func successReply(title, description string) *chat.Reply {
	return chat.EmbedReply(&chat.Embed{Title: title, Description: description, Color: chat.ColorGreen})
}

func failureReply(title, description string) *chat.Reply {
	return chat.EmbedReply(&chat.Embed{Title: title, Description: description, Color: chat.ColorRed})
}

// invalidReply renders a malformed command with its diagnostic, if any.
func invalidReply(title, description string, diag error) *chat.Reply {
	e := &chat.Embed{Title: title, Description: description, Color: chat.ColorRed}
	if diag != nil {
		e.Fields = append(e.Fields, chat.EmbedField{Name: "오류 내용", Value: diag.Error()})
	}
	return chat.EmbedReply(e)
}

// errorReply converts a business failure into a red embed. Errors without a
// user-facing code are returned so the router treats them as unexpected.
func errorReply(title string, err error) (*chat.Reply, error) {
	switch apperrors.Code(err) {
	case apperrors.CodeNotFound, apperrors.CodeConflict, apperrors.CodeValidation:
		return failureReply(title, apperrors.UserMessage(err, err.Error())), nil
	case apperrors.CodeAPI:
		return failureReply(title, "외부 서비스 호출에 실패했습니다.\n"+err.Error()), nil
	default:
		return nil, err
	}
}
