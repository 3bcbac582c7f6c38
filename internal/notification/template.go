package notification

import (
	"bytes"
	"html/template"
)

const invitationSubject = "Auction Notification"

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Dear Supplier,</p>
<p>{{if .CompanyBuyerName}}{{.CompanyBuyerName}}{{else}}A buyer{{end}} has invited you to take part in the auction <strong>{{.AuctionName}}</strong>.</p>
<p>Please <a href="{{.Link}}">sign in to the portal</a> to review the invitation and submit your bid.</p>
<p>This is an automated message, please do not reply.</p>
</body>
</html>`))

func renderInvitation(inv Invitation) (string, error) {
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, inv); err != nil {
		return "", err
	}
	return buf.String(), nil
}
