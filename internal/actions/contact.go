package actions

import (
	"context"

	"ticketstorm/internal/client"
	"ticketstorm/internal/envelope"
)

const contactsByAccountStatName = "/api/v1/contactservice/contacts/account/{accountId}"

// Contact is one saved passenger contact, scoped to an account.
type Contact struct {
	ID             string
	Name           string
	DocumentType   int
	DocumentNumber string
	PhoneNumber    string
}

// Contacts wraps the contact service endpoints.
type Contacts struct {
	transport client.Transport
}

func NewContacts(t client.Transport) *Contacts {
	return &Contacts{transport: t}
}

// ByAccount fetches the contacts saved for an account. Contacts are fetched
// fresh each workflow run and never cached; failures degrade to an empty slice.
func (c *Contacts) ByAccount(ctx context.Context, accountID, token string) ([]Contact, envelope.Outcome) {
	out := do(ctx, c.transport, client.Request{
		Method:  "GET",
		Path:    "/api/v1/contactservice/contacts/account/" + accountID,
		Name:    contactsByAccountStatName,
		Headers: bearer(token),
	})

	var contacts []Contact
	for _, item := range out.Array() {
		contacts = append(contacts, Contact{
			ID:             item.Get("id").String(),
			Name:           item.Get("name").String(),
			DocumentType:   int(item.Get("documentType").Int()),
			DocumentNumber: item.Get("documentNumber").String(),
			PhoneNumber:    item.Get("phoneNumber").String(),
		})
	}
	return contacts, out
}
