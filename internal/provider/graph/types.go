// Package graph implements a Provider that sends emails via the Microsoft Graph API.
package graph

import "github.com/shineum/sendcard/internal/email"

const fileAttachmentType = "#microsoft.graph.fileAttachment"

// sendMailBody is the JSON accepted by POST /users/{id}/sendMail.
type sendMailBody struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

type graphMessage struct {
	Subject      string           `json:"subject"`
	Body         itemBody         `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
	Attachments  []fileAttachment `json:"attachments,omitempty"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

// fileAttachment carries the card inline; ContentBytes is base64 text.
type fileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

func newSendMailBody(msg *email.Email) *sendMailBody {
	body := &sendMailBody{
		Message: graphMessage{
			Subject: msg.Subject,
			Body:    itemBody{ContentType: "html", Content: msg.HTMLBody},
		},
	}
	for _, addr := range msg.To {
		var r graphRecipient
		r.EmailAddress.Address = addr
		body.Message.ToRecipients = append(body.Message.ToRecipients, r)
	}
	for _, att := range msg.Attachments {
		body.Message.Attachments = append(body.Message.Attachments, fileAttachment{
			ODataType:    fileAttachmentType,
			Name:         att.Filename,
			ContentType:  att.ContentType,
			ContentBytes: att.Content,
		})
	}
	return body
}
