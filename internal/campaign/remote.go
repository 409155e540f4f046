package campaign

import (
	"context"

	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// RemoteGenerator adapts the sales backend client to the Generator interface.
type RemoteGenerator struct {
	API salesapi.Client
}

func (g RemoteGenerator) GenerateEmail(ctx context.Context, in GenerationInput) (string, error) {
	resp, err := g.API.GenerateEmail(ctx, salesapi.EmailRequest{
		CustomerName: in.CustomerName,
		LeadScore:    in.LeadScore,
		QuoteValue:   in.QuoteValue,
		ItemCount:    in.ItemCount,
	})
	if err != nil {
		return "", err
	}
	return resp.EmailBody, nil
}

// RemoteSender adapts the sales backend client to the Sender interface. The
// backend regenerates the email body server-side, so SendInput.Body is not
// transmitted.
type RemoteSender struct {
	API salesapi.Client
}

func (s RemoteSender) Send(ctx context.Context, in SendInput) (SendOutcome, error) {
	resp, err := s.API.SendEmail(ctx, salesapi.SendRequest{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		LeadScore:     in.LeadScore,
		QuoteValue:    in.QuoteValue,
		ItemCount:     in.ItemCount,
		Subject:       in.Subject,
	})
	if err != nil {
		return SendOutcome{}, err
	}
	return SendOutcome{Success: resp.Success, Message: resp.Message}, nil
}
