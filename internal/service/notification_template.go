package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/majupersonalizados/briefing/internal/model"
)

const (
	notificationLabelStyle = "font-weight: bold; background-color: #f8f9fa; padding: 10px; border-radius: 4px; margin-top: 15px; display: block; width: 100%; color: #333;"
	notificationValueStyle = "padding: 10px; display: block; margin-bottom: 10px; color: #555; white-space: pre-wrap;"
)

var notificationTemplate = template.Must(template.New("briefing").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(strings.NewReplacer(
	"{{label}}", notificationLabelStyle,
	"{{value}}", notificationValueStyle,
).Replace(`<div style="font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto;">
	<h2 style="color: #000; padding-bottom: 10px; border-bottom: 2px solid #eaeaea;">Novo Briefing Recebido - Maju Personalizados</h2>

	<div style="{{label}}">Qual seu nome?</div>
	<div style="{{value}}">{{.ContactName}}</div>

	<div style="{{label}}">Endereço de e-mail corporativo</div>
	<div style="{{value}}">{{.ContactEmail}}</div>

	<div style="{{label}}">Telefone / WhatsApp</div>
	<div style="{{value}}">{{.ContactPhone}}</div>

	<div style="{{label}}">Descrição da Empresa e Expectativas para o E-commerce</div>
	<div style="{{value}}"><strong>Empresa:</strong> {{.CompanyName}}<br/><br/><strong>Expectativas:</strong><br/>{{.Expectations}}</div>

	<div style="{{label}}">Público-Alvo</div>
	<div style="{{value}}">{{.TargetAudience}}</div>

	<div style="{{label}}">Slogans e Termos Relacionados ao Propósito</div>
	<div style="{{value}}">{{.Slogans}}</div>

	<div style="{{label}}">Experiência Anterior com Produtos Personalizados</div>
	<div style="{{value}}">{{.PriorExperience}}</div>

	<div style="{{label}}">Lançamento do E-commerce em Evento Físico</div>
	<div style="{{value}}">{{.LaunchEventDate}}</div>

	<div style="{{label}}">Envio de Materiais (Link)</div>
	<div style="{{value}}">{{if .FilesLink}}<a href="{{.FilesLink}}">{{.FilesLink}}</a>{{else}}Não informado{{end}}</div>

	<div style="{{label}}">Arquivos Anexados</div>
	<div style="{{value}}">
		{{- range $i, $url := .Files}}{{if $i}}<br/>{{end}}<a href="{{$url}}">Arquivo {{inc $i}}</a>{{else}}Nenhum arquivo anexado{{end -}}
	</div>

	<div style="{{label}}">Logotipo</div>
	<div style="{{value}}">{{.Logo}}</div>

	<div style="{{label}}">Paleta de Cores e Tipografia</div>
	<div style="{{value}}">{{.ColorsTypography}}</div>

	<div style="{{label}}">Referências de E-commerces</div>
	<div style="{{value}}">{{.ReferenceLinks}}</div>

	<div style="{{label}}">Data de Envio</div>
	<div style="{{value}}">{{.SentAt}}</div>
</div>
`)))

// brazilTime is the fixed UTC-3 offset used for the send date; Brazil has no DST.
var brazilTime = time.FixedZone("BRT", -3*60*60)

type notificationView struct {
	ContactName      string
	ContactEmail     string
	ContactPhone     string
	CompanyName      string
	Expectations     string
	TargetAudience   string
	Slogans          string
	PriorExperience  string
	LaunchEventDate  string
	FilesLink        string
	Files            []string
	Logo             string
	ColorsTypography string
	ReferenceLinks   string
	SentAt           string
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func logoLabel(b *model.Briefing) string {
	if b.HasExclusiveLogo() {
		return "Criar logotipo exclusivo"
	}
	return "Usar logotipo atual da marca"
}

// formatBrazilian renders t the way pt-BR locales print a date and time.
func formatBrazilian(t time.Time) string {
	return t.In(brazilTime).Format("02/01/2006, 15:04:05")
}

func notificationEmailTemplate(b *model.Briefing, sentAt time.Time) (string, string, error) {
	subject := fmt.Sprintf("Novo Briefing Disponível: %s", b.CompanyName)

	view := notificationView{
		ContactName:      orDash(b.ContactInfo.Name),
		ContactEmail:     orDash(b.ContactInfo.Email),
		ContactPhone:     orDash(b.ContactInfo.Phone),
		CompanyName:      orDash(b.CompanyName),
		Expectations:     orDash(b.Expectations),
		TargetAudience:   orDash(b.TargetAudience),
		Slogans:          orDash(b.Slogans),
		PriorExperience:  orDash(b.PriorExperience),
		LaunchEventDate:  orDash(b.LaunchEventDate),
		FilesLink:        strings.TrimSpace(b.FilesLinkValue()),
		Files:            b.VisualIdentityFiles,
		Logo:             logoLabel(b),
		ColorsTypography: orDash(b.ColorsTypography),
		ReferenceLinks:   orDash(b.ReferenceLinks),
		SentAt:           formatBrazilian(sentAt),
	}

	var buf bytes.Buffer
	err := notificationTemplate.Execute(&buf, view)
	if err != nil {
		return "", "", fmt.Errorf("failed to render notification: %w", err)
	}

	return subject, buf.String(), nil
}
