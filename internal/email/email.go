// Package email implementa el notifier de activación: el mail con el link
// de un solo uso que habilita una cuenta auto-registrada.
//
// El envío es fire-and-forget desde la perspectiva del registro: un fallo
// se loguea y nunca se propaga al caller.
package email

import (
	"bytes"
	"context"
	"fmt"
	texttpl "text/template"

	"github.com/wearefrancis/auth/internal/domain"
)

// Notifier envía el mail de activación de una cuenta recién registrada.
type Notifier interface {
	SendActivation(ctx context.Context, acct *domain.Account, activationValue string) error
}

// Noop descarta los mails. Para tests y para correr sin SMTP configurado.
type Noop struct{}

func (Noop) SendActivation(ctx context.Context, acct *domain.Account, activationValue string) error {
	return nil
}

var activationText = texttpl.Must(texttpl.New("activation").Parse(
	`Hola {{.Username}},

Para activar tu cuenta seguí este link:

    {{.Link}}

El link es de un solo uso. Si no creaste esta cuenta, ignorá este mail.
`))

var activationHTML = texttpl.Must(texttpl.New("activation_html").Parse(
	`<p>Hola <b>{{.Username}}</b>,</p>
<p>Para activar tu cuenta hac&eacute; click en el siguiente link (un solo uso):</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Si no creaste esta cuenta, ignor&aacute; este mail.</p>
`))

type activationVars struct {
	Username string
	Link     string
}

// renderActivation genera las versiones texto y HTML del mail.
func renderActivation(apiURL, username, activationValue string) (text, html string, err error) {
	vars := activationVars{
		Username: username,
		Link:     fmt.Sprintf("%s/v1/users/activate/%s", apiURL, activationValue),
	}
	var tb, hb bytes.Buffer
	if err := activationText.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	if err := activationHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}
