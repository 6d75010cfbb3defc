// Package page renders the server-side landing page.
package page

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/production"

	"github.com/shopspring/decimal"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Model is everything the landing page shows.
type Model struct {
	Estimate calculator.Estimate
	Summary  leads.Summary
	Consent  bool
	Chart    production.Chart
	Steps    []production.Step
	Contact  Contact
	// Path is where the consent form returns to.
	Path string
}

// Contact is the state of the contact form.
type Contact struct {
	Values  map[string]string
	Invalid leads.Result
	Focus   string
	Sent    bool
}

// Landing renders the whole document.
func Landing(m Model) g.Node {
	return Doctype(
		HTML(
			g.Attr("lang", "pl"),
			Head(
				Meta(g.Attr("charset", "utf-8")),
				Meta(Name("viewport"), g.Attr("content", "width=device-width, initial-scale=1")),
				g.El("title", g.Text("Upthermo ORC | Prąd z ciepła odpadowego")),
				g.El("style", g.Raw(stylesheet)),
			),
			Body(
				siteHeader(),
				Main(
					hero(),
					calculatorSection(m.Estimate),
					productionSection(m.Chart),
					timelineSection(m.Steps),
					contactSection(m.Summary, m.Contact),
				),
				A(Class("sticky-cta"), Href("#kontakt"), g.Text("Umów bezpłatny audyt")),
				g.If(!m.Consent, cookieBanner(m.Path)),
			),
		),
	)
}

func siteHeader() g.Node {
	links := []struct{ href, label string }{
		{"#kalkulator", "Kalkulator"},
		{"#produkcja", "Produkcja"},
		{"#wdrozenie", "Wdrożenie"},
		{"#kontakt", "Kontakt"},
	}
	return Header(
		ID("header"),
		A(Class("logo"), Href("/"), g.Text("Upthermo")),
		Nav(
			g.Group(g.Map(links, func(l struct{ href, label string }) g.Node {
				return A(Href(l.href), g.Text(l.label))
			})),
		),
	)
}

func hero() g.Node {
	return Section(
		Class("hero"),
		H1(g.Text("Zamień ciepło odpadowe w prąd")),
		P(g.Text("Turbina ORC produkuje energię elektryczną przez cały rok, niezależnie od pogody.")),
		A(Class("btn"), Href("#kalkulator"), g.Text("Policz oszczędności")),
	)
}

func calculatorSection(est calculator.Estimate) g.Node {
	return Section(
		ID("kalkulator"),
		H2(g.Text("Kalkulator oszczędności")),
		g.El("form",
			Method("get"),
			Action("/#kalkulator"),
			field("input-bill", "Miesięczny rachunek za prąd (PLN)",
				Input(ID("input-bill"), Type("number"), Name(calculator.FieldBill), g.Attr("min", "0"), g.Attr("step", "1000"),
					Value(est.MonthlyBill.String())),
				Span(ID("val-bill"), g.Text(cli.FormatBill(est.MonthlyBill))),
			),
			field("input-waste", "Odpady produkcyjne (ton dziennie)",
				Input(ID("input-waste"), Type("number"), Name(calculator.FieldWaste), g.Attr("min", "0"),
					Value(strconv.Itoa(est.WasteTons))),
				Span(ID("val-waste"), g.Text(cli.FormatWaste(est.WasteTons))),
			),
			Div(Class("field"),
				Span(Class("field-label"), g.Text("Liczba zmian")),
				g.Group(g.Map([]int{1, 2, 3}, func(n int) g.Node {
					return g.El("label",
						Input(Type("radio"), Name(calculator.FieldShifts), Value(strconv.Itoa(n)), g.If(est.ShiftCount == n, Checked())),
						g.Text(strconv.Itoa(n)),
					)
				})),
			),
			Div(Class("field"),
				g.El("label",
					Input(Type("checkbox"), Name(calculator.FieldSolar), Value("true"), g.If(est.HasSolar, Checked())),
					g.Text("Mam instalację fotowoltaiczną"),
				),
			),
			Button(Type("submit"), Class("btn"), g.Text("Przelicz")),
		),
		results(est),
	)
}

func field(id, label string, children ...g.Node) g.Node {
	return Div(Class("field"),
		g.El("label", g.Attr("for", id), g.Text(label)),
		g.Group(children),
	)
}

func results(est calculator.Estimate) g.Node {
	inaction := est.Inaction()
	return Div(
		Class("results"),
		resultRow("res-rate", "Szacowana redukcja kosztów", cli.FormatRate(est.SavingsRate)),
		resultRow("res-current-bill", "Obecne koszty energii rocznie", cli.FormatMoney(est.CurrentYearlyBill)),
		resultRow("res-savings-month", "Oszczędność miesięczna", cli.FormatMoney(est.MonthlySavings)),
		resultRow("res-savings-year", "Oszczędność roczna", cli.FormatMoney(est.YearlySavings)),
		P(ID("res-savings-context"), g.Raw(cli.ContextHTML(est))),
		Ul(Class("bonuses"),
			g.Group(g.Map(cli.Bonuses(est.HasSolar), func(b string) g.Node {
				return Li(Class("bonus-item"), g.Text(b))
			})),
		),
		H3(g.Text("Koszt zwłoki")),
		Table(Class("inaction"),
			TBody(
				lossRow("loss-daily", "Każdy dzień", inaction.Daily),
				lossRow("loss-1m", "1 miesiąc", inaction.OneMonth),
				lossRow("loss-6m", "6 miesięcy", inaction.SixMonths),
				lossRow("loss-1y", "12 miesięcy", inaction.TwelveMonths),
			),
		),
		A(ID("btn-send-calc"), Class("btn"), Href(offerLink(est)), g.Text("Wyślij moje wyliczenia")),
	)
}

func resultRow(id, label, value string) g.Node {
	return Div(Class("result"),
		Span(Class("result-label"), g.Text(label)),
		Strong(ID(id), g.Text(value)),
	)
}

func lossRow(id, label string, amount decimal.Decimal) g.Node {
	return Tr(Th(g.Text(label)), Td(ID(id), Class("loss"), g.Text(cli.FormatLoss(amount))))
}

// offerLink reloads the page with the same inputs and the message prefilled.
func offerLink(est calculator.Estimate) string {
	q := url.Values{}
	q.Set(calculator.FieldBill, est.MonthlyBill.String())
	q.Set(calculator.FieldWaste, strconv.Itoa(est.WasteTons))
	q.Set(calculator.FieldShifts, strconv.Itoa(est.ShiftCount))
	if est.HasSolar {
		q.Set(calculator.FieldSolar, "true")
	}
	q.Set("offer", "1")
	return "/?" + q.Encode() + "#kontakt"
}

func productionSection(c production.Chart) g.Node {
	peak := c.Peak()
	return Section(
		ID("produkcja"),
		H2(g.Text(c.Title)),
		Table(Class("chart"),
			THead(Tr(
				Th(g.Text("Miesiąc")),
				g.Group(g.Map(c.Series, func(s production.Series) g.Node {
					return Th(g.Text(s.Label))
				})),
			)),
			TBody(
				g.Group(g.Map(monthIndexes(), func(i int) g.Node {
					return Tr(
						Th(g.Text(c.Labels[i])),
						g.Group(g.Map(c.Series, func(s production.Series) g.Node {
							return Td(
								Span(Class("bar"), g.Attr("style", barStyle(s.Color, s.Values[i], peak))),
								Span(g.Text(cli.FormatKWh(s.Values[i]))),
							)
						})),
					)
				})),
			),
		),
	)
}

func monthIndexes() []int {
	idx := make([]int, 12)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func barStyle(color string, value, peak float64) string {
	pct := 0.0
	if peak > 0 {
		pct = value / peak * 100
	}
	return fmt.Sprintf("width:%.1f%%;background:%s", pct, color)
}

func timelineSection(steps []production.Step) g.Node {
	return Section(
		ID("wdrozenie"),
		H2(g.Text("Jak wygląda wdrożenie")),
		Div(Class("timeline"),
			Div(Class("timeline-progress")),
			g.Group(g.Map(steps, func(s production.Step) g.Node {
				return Div(Class("timeline-item"),
					H3(g.Text(s.Title)),
					Small(g.Text(s.Weeks)),
					P(g.Text(s.Detail)),
				)
			})),
		),
	)
}

func contactSection(summary leads.Summary, c Contact) g.Node {
	hidden := summary.Hidden()
	hiddenOrder := []string{leads.HiddenBill, leads.HiddenWaste, leads.HiddenShifts, leads.HiddenSolar, leads.HiddenSavings}

	return Section(
		ID("kontakt"),
		H2(g.Text("Porozmawiajmy o Twoim zakładzie")),
		g.If(c.Sent, P(Class("sent"), g.Text("Dziękujemy! Odezwiemy się w ciągu 24 godzin."))),
		g.El("form",
			ID("contact-form"),
			Method("post"),
			Action("/contact"),
			g.Attr("novalidate"),
			contactInput(c, leads.FieldName, "Imię i nazwisko", "text", true),
			contactInput(c, leads.FieldEmail, "E-mail", "email", true),
			contactInput(c, leads.FieldPhone, "Telefon", "tel", false),
			contactInput(c, leads.FieldCompany, "Firma", "text", false),
			Div(Class(fieldClass(c, leads.FieldMessage)),
				g.El("label", g.Attr("for", "contact-message"), g.Text("Wiadomość")),
				Textarea(ID("contact-message"), Name(leads.FieldMessage), g.Attr("rows", "5"), Required(),
					invalidAttr(c, leads.FieldMessage), focusAttr(c, leads.FieldMessage),
					g.Text(c.Values[leads.FieldMessage]),
				),
			),
			g.Group(g.Map(hiddenOrder, func(name string) g.Node {
				return Input(Type("hidden"), ID(name), Name(name), Value(hidden[name]))
			})),
			Button(Type("submit"), Class("btn"), g.Text("Wyślij")),
		),
	)
}

func contactInput(c Contact, name, label, typ string, required bool) g.Node {
	id := "contact-" + name
	return Div(Class(fieldClass(c, name)),
		g.El("label", g.Attr("for", id), g.Text(label)),
		Input(ID(id), Type(typ), Name(name), Value(c.Values[name]),
			g.If(required, Required()),
			invalidAttr(c, name), focusAttr(c, name),
		),
	)
}

func fieldClass(c Contact, name string) string {
	if c.Invalid.Has(name) {
		return "field invalid"
	}
	return "field"
}

func invalidAttr(c Contact, name string) g.Node {
	return g.If(c.Invalid.Has(name), g.Attr("aria-invalid", "true"))
}

func focusAttr(c Contact, name string) g.Node {
	return g.If(c.Focus == name, g.Attr("autofocus"))
}

func cookieBanner(returnTo string) g.Node {
	return Div(
		ID("cookie-banner"),
		P(g.Text("Używamy plików cookie, aby zapamiętać Twoje ustawienia i analizować ruch na stronie.")),
		g.El("form",
			Method("post"),
			Action("/consent"),
			Input(Type("hidden"), Name("return"), Value(returnTo)),
			Button(Type("submit"), ID("cookie-accept"), Class("btn"), g.Text("Akceptuję")),
		),
	)
}

const stylesheet = `
body{margin:0;font-family:system-ui,sans-serif;color:#1c1b1a}
#header{position:sticky;top:0;display:flex;justify-content:space-between;padding:1rem 2rem;background:#fff;box-shadow:0 1px 4px rgba(0,0,0,.08)}
#header nav a{margin-left:1.5rem;color:inherit;text-decoration:none}
section{max-width:960px;margin:0 auto;padding:4rem 1.5rem;scroll-margin-top:80px}
.btn{display:inline-block;padding:.75rem 1.5rem;border:0;border-radius:.5rem;background:#ff6b35;color:#fff;text-decoration:none;cursor:pointer}
.field{margin-bottom:1rem}
.field.invalid input,.field.invalid textarea{border-color:#d14d41}
.result{display:flex;justify-content:space-between;padding:.5rem 0}
.loss{color:#d14d41}
.chart .bar{display:block;height:.5rem}
.timeline-item{border-left:3px solid #ff6b35;padding-left:1rem;margin-bottom:1.5rem}
.sticky-cta{position:fixed;right:1.5rem;bottom:1.5rem}
#cookie-banner{position:fixed;left:0;right:0;bottom:0;padding:1rem 2rem;background:#1c1b1a;color:#fffcf0}
`
