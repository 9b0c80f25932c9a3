package email

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
)

// Supported template languages. Anything that is not an English locale
// renders Swedish.
const (
	LangSwedish = "sv-SE"
	LangEnglish = "en-GB"
)

// normalizeLang maps a stored locale onto one of the two template languages.
func normalizeLang(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return LangEnglish
	}
	return LangSwedish
}

// emailData is the view model every template renders against. Fields are
// populated from the EmailContext per email type.
type emailData struct {
	Name  string
	Email string

	Order *domain.Order

	Code      string
	ExpiresAt time.Time
	ResetURL  string

	TemporaryPassword string
	LoginURL          string

	Application *domain.ApplicationPayload
	Affiliate   *domain.AffiliatePayload
}

type templatePair struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
}

func pair(name, subject, body string) *templatePair {
	return &templatePair{
		subject: texttemplate.Must(texttemplate.New(name + "/subject").Parse(subject)),
		body:    htmltemplate.Must(htmltemplate.New(name + "/body").Parse(body)),
	}
}

const layoutHeader = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">` +
	`<div style="background:#1e3a5f;color:#fff;padding:16px 24px"><h2 style="margin:0">B8Shield</h2></div>` +
	`<div style="padding:24px">`

const layoutFooter = `</div>` +
	`<div style="background:#f4f4f4;color:#888;padding:12px 24px;font-size:12px">B8Shield &middot; JPH Innovation AB</div></div>`

// registry maps email type and language to its template pair. Every member of
// the enumeration has both language variants; the dispatcher fails closed on
// anything missing.
var registry = map[domain.EmailType]map[string]*templatePair{
	domain.EmailOrderConfirmation: {
		LangSwedish: pair("order_confirmation_sv",
			`Orderbekräftelse {{.Order.OrderNumber}} - B8Shield`,
			layoutHeader+`<p>Hej {{.Name}},</p>
<p>Tack för din beställning! Vi har tagit emot order <strong>{{.Order.OrderNumber}}</strong>.</p>
<table style="width:100%;border-collapse:collapse">{{range .Order.Items}}<tr>
<td style="padding:4px 0">{{.Name}}{{if .Color}} ({{.Color}}{{if .Size}}, {{.Size}}{{end}}){{end}} &times; {{.Quantity}}</td>
<td style="text-align:right">{{printf "%.2f" .Price}} kr</td></tr>{{end}}</table>
<p><strong>Totalt: {{printf "%.2f" .Order.Total}} kr</strong></p>
<p>Vi meddelar dig när ordern skickas.</p>`+layoutFooter),
		LangEnglish: pair("order_confirmation_en",
			`Order confirmation {{.Order.OrderNumber}} - B8Shield`,
			layoutHeader+`<p>Hi {{.Name}},</p>
<p>Thank you for your order! We have received order <strong>{{.Order.OrderNumber}}</strong>.</p>
<table style="width:100%;border-collapse:collapse">{{range .Order.Items}}<tr>
<td style="padding:4px 0">{{.Name}}{{if .Color}} ({{.Color}}{{if .Size}}, {{.Size}}{{end}}){{end}} &times; {{.Quantity}}</td>
<td style="text-align:right">{{printf "%.2f" .Price}} kr</td></tr>{{end}}</table>
<p><strong>Total: {{printf "%.2f" .Order.Total}} kr</strong></p>
<p>We will let you know when your order ships.</p>`+layoutFooter),
	},
	domain.EmailOrderStatusUpdate: {
		LangSwedish: pair("order_status_sv",
			`Orderuppdatering {{.Order.OrderNumber}} - B8Shield`,
			layoutHeader+`<p>Hej {{.Name}},</p>
<p>Din order <strong>{{.Order.OrderNumber}}</strong> har nu status: <strong>{{.Order.Status}}</strong>.</p>
{{if .Order.TrackingURL}}<p><a href="{{.Order.TrackingURL}}">Spåra din leverans</a></p>{{end}}`+layoutFooter),
		LangEnglish: pair("order_status_en",
			`Order update {{.Order.OrderNumber}} - B8Shield`,
			layoutHeader+`<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.Order.OrderNumber}}</strong> is now: <strong>{{.Order.Status}}</strong>.</p>
{{if .Order.TrackingURL}}<p><a href="{{.Order.TrackingURL}}">Track your delivery</a></p>{{end}}`+layoutFooter),
	},
	domain.EmailOrderNotificationAdmin: {
		LangSwedish: pair("order_admin_sv",
			`Ny order {{.Order.OrderNumber}} ({{.Order.Source}})`,
			layoutHeader+`<p>Ny order mottagen.</p>
<p>Ordernummer: <strong>{{.Order.OrderNumber}}</strong><br>
Kund: {{.Order.CustomerInfo.Name}} ({{.Order.CustomerInfo.Email}})<br>
Källa: {{.Order.Source}}<br>
Totalt: {{printf "%.2f" .Order.Total}} kr</p>
{{if .Order.AffiliateCode}}<p>Affiliatekod: {{.Order.AffiliateCode}}</p>{{end}}`+layoutFooter),
		LangEnglish: pair("order_admin_en",
			`New order {{.Order.OrderNumber}} ({{.Order.Source}})`,
			layoutHeader+`<p>New order received.</p>
<p>Order number: <strong>{{.Order.OrderNumber}}</strong><br>
Customer: {{.Order.CustomerInfo.Name}} ({{.Order.CustomerInfo.Email}})<br>
Source: {{.Order.Source}}<br>
Total: {{printf "%.2f" .Order.Total}} kr</p>
{{if .Order.AffiliateCode}}<p>Affiliate code: {{.Order.AffiliateCode}}</p>{{end}}`+layoutFooter),
	},
	domain.EmailWelcome: {
		LangSwedish: pair("welcome_sv",
			`Välkommen till B8Shield!`,
			layoutHeader+`<p>Hej {{.Name}},</p>
<p>Välkommen! Ditt konto är nu aktivt.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Logga in här</a></p>{{end}}`+layoutFooter),
		LangEnglish: pair("welcome_en",
			`Welcome to B8Shield!`,
			layoutHeader+`<p>Hi {{.Name}},</p>
<p>Welcome! Your account is now active.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Log in here</a></p>{{end}}`+layoutFooter),
	},
	domain.EmailPasswordReset: {
		LangSwedish: pair("password_reset_sv",
			`Återställ ditt lösenord - B8Shield`,
			layoutHeader+`<p>Hej{{if .Name}} {{.Name}}{{end}},</p>
<p>Använd koden nedan för att återställa ditt lösenord:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>Koden är giltig till {{.ExpiresAt.Format "15:04"}}. Om du inte begärde detta kan du ignorera mejlet.</p>`+layoutFooter),
		LangEnglish: pair("password_reset_en",
			`Reset your password - B8Shield`,
			layoutHeader+`<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
<p>Use the code below to reset your password:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>The code is valid until {{.ExpiresAt.Format "15:04"}}. If you did not request this, you can ignore this email.</p>`+layoutFooter),
	},
	domain.EmailAffiliateWelcome: {
		LangSwedish: pair("affiliate_welcome_sv",
			`Välkommen som B8Shield-affiliate!`,
			layoutHeader+`<p>Hej {{.Affiliate.Name}},</p>
<p>Din affiliate-ansökan är godkänd!</p>
<p>Din kod: <strong>{{.Affiliate.Code}}</strong><br>
Provision: {{printf "%.0f" .Affiliate.CommissionRate}}%<br>
Kundrabatt: {{printf "%.0f" .Affiliate.CheckoutDiscount}}%</p>`+layoutFooter),
		LangEnglish: pair("affiliate_welcome_en",
			`Welcome as a B8Shield affiliate!`,
			layoutHeader+`<p>Hi {{.Affiliate.Name}},</p>
<p>Your affiliate application has been approved!</p>
<p>Your code: <strong>{{.Affiliate.Code}}</strong><br>
Commission: {{printf "%.0f" .Affiliate.CommissionRate}}%<br>
Customer discount: {{printf "%.0f" .Affiliate.CheckoutDiscount}}%</p>`+layoutFooter),
	},
	domain.EmailVerification: {
		LangSwedish: pair("verification_sv",
			`Din verifieringskod - B8Shield`,
			layoutHeader+`<p>Din verifieringskod är:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>`+layoutFooter),
		LangEnglish: pair("verification_en",
			`Your verification code - B8Shield`,
			layoutHeader+`<p>Your verification code is:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>`+layoutFooter),
	},
	domain.EmailAddressVerification: {
		LangSwedish: pair("email_verification_sv",
			`Bekräfta din e-postadress - B8Shield`,
			layoutHeader+`<p>Hej{{if .Name}} {{.Name}}{{end}},</p>
<p>Bekräfta din e-postadress med koden:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>`+layoutFooter),
		LangEnglish: pair("email_verification_en",
			`Confirm your email address - B8Shield`,
			layoutHeader+`<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
<p>Confirm your email address with the code:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>`+layoutFooter),
	},
	domain.EmailLoginCredentials: {
		LangSwedish: pair("login_credentials_sv",
			`Dina inloggningsuppgifter - B8Shield`,
			layoutHeader+`<p>Hej {{.Name}},</p>
<p>Ett konto har skapats åt dig.</p>
<p>E-post: <strong>{{.Email}}</strong><br>
Tillfälligt lösenord: <strong>{{.TemporaryPassword}}</strong></p>
<p><a href="{{.LoginURL}}">Logga in</a> och byt lösenord direkt.</p>`+layoutFooter),
		LangEnglish: pair("login_credentials_en",
			`Your login credentials - B8Shield`,
			layoutHeader+`<p>Hi {{.Name}},</p>
<p>An account has been created for you.</p>
<p>Email: <strong>{{.Email}}</strong><br>
Temporary password: <strong>{{.TemporaryPassword}}</strong></p>
<p><a href="{{.LoginURL}}">Log in</a> and change your password right away.</p>`+layoutFooter),
	},
	domain.EmailAffiliateAppReceived: {
		LangSwedish: pair("affiliate_app_received_sv",
			`Vi har tagit emot din affiliate-ansökan`,
			layoutHeader+`<p>Hej {{.Application.ApplicantName}},</p>
<p>Tack för din ansökan! Vi återkommer så snart den har granskats.</p>`+layoutFooter),
		LangEnglish: pair("affiliate_app_received_en",
			`We have received your affiliate application`,
			layoutHeader+`<p>Hi {{.Application.ApplicantName}},</p>
<p>Thanks for applying! We will get back to you once it has been reviewed.</p>`+layoutFooter),
	},
	domain.EmailAffiliateAppAdmin: {
		LangSwedish: pair("affiliate_app_admin_sv",
			`Ny affiliate-ansökan: {{.Application.ApplicantName}}`,
			layoutHeader+`<p>Ny affiliate-ansökan.</p>
<p>Namn: {{.Application.ApplicantName}}<br>
E-post: {{.Email}}</p>
{{if .Application.Message}}<p>Meddelande: {{.Application.Message}}</p>{{end}}`+layoutFooter),
		LangEnglish: pair("affiliate_app_admin_en",
			`New affiliate application: {{.Application.ApplicantName}}`,
			layoutHeader+`<p>New affiliate application.</p>
<p>Name: {{.Application.ApplicantName}}<br>
Email: {{.Email}}</p>
{{if .Application.Message}}<p>Message: {{.Application.Message}}</p>{{end}}`+layoutFooter),
	},
	domain.EmailB2BAppReceived: {
		LangSwedish: pair("b2b_app_received_sv",
			`Vi har tagit emot din återförsäljaransökan`,
			layoutHeader+`<p>Hej {{.Application.ApplicantName}},</p>
<p>Tack för er ansökan från {{.Application.CompanyName}}! Vi hör av oss när den har behandlats.</p>`+layoutFooter),
		LangEnglish: pair("b2b_app_received_en",
			`We have received your reseller application`,
			layoutHeader+`<p>Hi {{.Application.ApplicantName}},</p>
<p>Thank you for the application from {{.Application.CompanyName}}! We will be in touch once it has been processed.</p>`+layoutFooter),
	},
	domain.EmailB2BAppAdmin: {
		LangSwedish: pair("b2b_app_admin_sv",
			`Ny återförsäljaransökan: {{.Application.CompanyName}}`,
			layoutHeader+`<p>Ny återförsäljaransökan.</p>
<p>Företag: {{.Application.CompanyName}}<br>
Kontakt: {{.Application.ApplicantName}}<br>
E-post: {{.Email}}</p>
{{if .Application.Message}}<p>Meddelande: {{.Application.Message}}</p>{{end}}`+layoutFooter),
		LangEnglish: pair("b2b_app_admin_en",
			`New reseller application: {{.Application.CompanyName}}`,
			layoutHeader+`<p>New reseller application.</p>
<p>Company: {{.Application.CompanyName}}<br>
Contact: {{.Application.ApplicantName}}<br>
Email: {{.Email}}</p>
{{if .Application.Message}}<p>Message: {{.Application.Message}}</p>{{end}}`+layoutFooter),
	},
}

// render selects the template for the email type and language and produces
// subject and HTML body. Missing required payload fields surface as template
// execution errors for the caller to handle.
func render(et domain.EmailType, lang string, data *emailData) (subject, html string, err error) {
	byLang, ok := registry[et]
	if !ok {
		return "", "", fmt.Errorf("no template registered for %s", et)
	}
	tp, ok := byLang[normalizeLang(lang)]
	if !ok {
		tp = byLang[LangSwedish]
	}

	var sb, hb strings.Builder
	if err := tp.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject for %s: %w", et, err)
	}
	if err := tp.body.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render body for %s: %w", et, err)
	}
	return sb.String(), hb.String(), nil
}
