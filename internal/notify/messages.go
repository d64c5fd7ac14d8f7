package notify

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var templates = template.Must(template.New("notify").Parse(`
{{define "otp"}}<h2>Your login code</h2>
<p>Hello {{.Username}},</p>
<p>Your OTP code is: <strong>{{.Code}}</strong>. Valid for {{.Minutes}} minutes.</p>{{end}}

{{define "account_approved"}}<h2>Welcome to AI Agent Hub!</h2>
<p>Hello {{.Username}},</p>
<p>Your account has been approved and is now active.</p>
<p>You can now login to the AI Agent Hub and start exploring agents.</p>
<p>Best regards,<br>AI Agent Hub Team</p>{{end}}

{{define "new_account"}}<h2>New User Registration</h2>
<p>A new user has registered and needs approval:</p>
<ul>
<li><strong>Username:</strong> {{.Username}}</li>
<li><strong>Email:</strong> {{.Email}}</li>
</ul>
<p>Please review and approve the user in the admin panel.</p>{{end}}

{{define "listing_decided"}}<h2>Agent Status Update</h2>
<p>Hello {{.Username}},</p>
<p>Your agent <strong>"{{.Listing}}"</strong> has been {{.Status}}.</p>
<p>You can view your agents in the dashboard.</p>
<p>Best regards,<br>AI Agent Hub Team</p>{{end}}

{{define "new_listing"}}<h2>New Agent Submission</h2>
<p>A new agent has been submitted and needs review:</p>
<ul>
<li><strong>Name:</strong> {{.Listing}}</li>
<li><strong>Category:</strong> {{.Category}}</li>
<li><strong>Submitted by:</strong> {{.Username}}</li>
</ul>
<p>Please review the agent in the admin panel.</p>{{end}}
`))

func render(name string, data any) string {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		panic(err)
	}
	return body.String()
}

func OTPMessage(to, username, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Your OTP for AI Agent Hub",
		Body: render("otp", map[string]any{
			"Username": username,
			"Code":     code,
			"Minutes":  int(ttl.Minutes()),
		}),
	}
}

func AccountApprovedMessage(to, username string) Message {
	return Message{
		To:      to,
		Subject: "Account Approved - AI Agent Hub",
		Body:    render("account_approved", map[string]any{"Username": username}),
	}
}

func NewAccountMessage(to, username, email string) Message {
	return Message{
		To:      to,
		Subject: "New User Registration - AI Agent Hub",
		Body:    render("new_account", map[string]any{"Username": username, "Email": email}),
	}
}

func ListingDecidedMessage(to, username, listing string, approved bool) Message {
	status := "rejected"
	if approved {
		status = "approved"
	}
	return Message{
		To:      to,
		Subject: "Agent " + strings.ToUpper(status[:1]) + status[1:] + " - AI Agent Hub",
		Body: render("listing_decided", map[string]any{
			"Username": username,
			"Listing":  listing,
			"Status":   status,
		}),
	}
}

func NewListingMessage(to, username, listing, category string) Message {
	return Message{
		To:      to,
		Subject: "New Agent Submission - AI Agent Hub",
		Body: render("new_listing", map[string]any{
			"Username": username,
			"Listing":  listing,
			"Category": category,
		}),
	}
}
