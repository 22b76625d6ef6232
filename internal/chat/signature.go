package chat

import (
	"net/http"

	"github.com/slack-go/slack"
)

// verifyRequest checks Slack's v0 request signature and timestamp window.
func verifyRequest(secret string, header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, secret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}
