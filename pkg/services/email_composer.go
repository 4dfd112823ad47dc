package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// ContactGroup is the set of requested datasets sharing one contact email.
type ContactGroup struct {
	Email    string                    `json:"email"`
	Datasets []models.DatasetReference `json:"datasets"`
}

// EmailComposer turns a data request into data access request emails.
type EmailComposer interface {
	// GroupByContact groups the requested datasets by contact email, in order
	// of first appearance.
	GroupByContact(req *models.DataRequest) []ContactGroup

	// ComposeRequestEmail builds a single email covering every dataset,
	// addressed to all distinct contacts.
	ComposeRequestEmail(req *models.DataRequest) models.ComposedEmail

	// ComposeEmailsByContact builds one email per distinct contact, each
	// listing only that contact's datasets.
	ComposeEmailsByContact(req *models.DataRequest) []models.ComposedEmail
}

type emailComposer struct{}

// NewEmailComposer creates an email composer.
func NewEmailComposer() EmailComposer {
	return &emailComposer{}
}

var _ EmailComposer = (*emailComposer)(nil)

func (c *emailComposer) GroupByContact(req *models.DataRequest) []ContactGroup {
	var groups []ContactGroup
	index := make(map[string]int)
	for _, ds := range req.Datasets {
		pos, ok := index[ds.ContactEmail]
		if !ok {
			pos = len(groups)
			index[ds.ContactEmail] = pos
			groups = append(groups, ContactGroup{Email: ds.ContactEmail})
		}
		groups[pos].Datasets = append(groups[pos].Datasets, ds)
	}
	return groups
}

func (c *emailComposer) ComposeRequestEmail(req *models.DataRequest) models.ComposedEmail {
	var recipients []string
	for _, g := range c.GroupByContact(req) {
		recipients = append(recipients, g.Email)
	}
	return newComposedEmail(recipients, req, req.Datasets)
}

func (c *emailComposer) ComposeEmailsByContact(req *models.DataRequest) []models.ComposedEmail {
	groups := c.GroupByContact(req)
	emails := make([]models.ComposedEmail, 0, len(groups))
	for _, g := range groups {
		emails = append(emails, newComposedEmail([]string{g.Email}, req, g.Datasets))
	}
	return emails
}

func newComposedEmail(to []string, req *models.DataRequest, datasets []models.DatasetReference) models.ComposedEmail {
	subject := emailSubject(datasets)
	body := emailBody(req, datasets)
	return models.ComposedEmail{
		To:         to,
		Subject:    subject,
		Body:       body,
		Datasets:   datasets,
		MailtoLink: mailtoLink(to, subject, body),
	}
}

func emailSubject(datasets []models.DatasetReference) string {
	switch len(datasets) {
	case 0:
		return "Data Access Request"
	case 1:
		return "Data Access Request - " + datasets[0].Title
	default:
		return fmt.Sprintf("Data Access Request - %s + %d more", datasets[0].Title, len(datasets)-1)
	}
}

func emailBody(req *models.DataRequest, datasets []models.DatasetReference) string {
	lines := []string{
		"Dear Data Steward,",
		"",
		"I am writing to request access to data for analysis under a data visiting arrangement.",
		"",
		"== REQUESTER INFORMATION ==",
		"Name: " + req.RequesterName,
		"Email: " + req.RequesterEmail,
		"Affiliation: " + req.RequesterAffiliation,
	}
	if req.RequesterORCID != "" {
		lines = append(lines, "ORCID: "+req.RequesterORCID)
	}
	lines = append(lines, "", "== REQUESTED DATASETS ==")

	for i, ds := range datasets {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, ds.Title),
			"   URI: "+ds.URI,
			"   Source: "+ds.FDPTitle,
			"",
		)
	}

	lines = append(lines,
		"== PROPOSED QUERY ==", req.Query, "",
		"== PURPOSE / JUSTIFICATION ==", req.Purpose, "",
	)
	if req.OutputConstraints != "" {
		lines = append(lines, "== OUTPUT CONSTRAINTS ==", req.OutputConstraints, "")
	}
	if req.Timeline != "" {
		lines = append(lines, "== TIMELINE ==", req.Timeline, "")
	}

	lines = append(lines,
		"I understand that the query will be executed locally on your systems and only verified/approved results will be returned. Please let me know if you require any additional information or documentation.",
		"",
		"Thank you for considering this request.",
		"",
		"Best regards,",
		req.RequesterName,
		req.RequesterAffiliation,
	)
	return strings.Join(lines, "\n")
}

// mailtoLink builds an RFC 6068 mailto URI. Spaces are encoded as %20; mail
// clients take + literally.
func mailtoLink(to []string, subject, body string) string {
	escape := func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	addrs := make([]string, len(to))
	for i, a := range to {
		addrs[i] = escape(a)
	}
	return "mailto:" + strings.Join(addrs, ",") + "?subject=" + escape(subject) + "&body=" + escape(body)
}
