// Package notify delivers report download links to a Teams workflow
// webhook. Delivery is best effort: the report already exists in the store
// whether or not anyone hears about it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// FileLink is one downloadable report.
type FileLink struct {
	Name string
	URL  string
}

// Notice carries everything the message templates need.
type Notice struct {
	Account     string
	Bucket      string
	GeneratedAt time.Time
	ExpiresAt   time.Time
	ExpiryHours int
	Files       []FileLink
}

// TeamsNotifier posts notices to a Teams workflow webhook.
type TeamsNotifier struct {
	webhook string
	httpc   *http.Client
	log     *slog.Logger
}

// NewTeamsNotifier creates a notifier. An empty webhook URL disables it.
func NewTeamsNotifier(webhook string, log *slog.Logger) *TeamsNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &TeamsNotifier{
		webhook: webhook,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Enabled reports whether a webhook is configured.
func (t *TeamsNotifier) Enabled() bool { return t.webhook != "" }

// Send posts one notice in the given language ("es" or "en").
func (t *TeamsNotifier) Send(ctx context.Context, n Notice, lang string) error {
	if !t.Enabled() {
		return fmt.Errorf("teams webhook not configured")
	}

	payload := buildPayload(n, lang)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding teams payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("posting to teams: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("teams returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// SendAll posts the notice in every requested language, logging failures
// without returning them.
func (t *TeamsNotifier) SendAll(ctx context.Context, n Notice, languages []string) {
	if !t.Enabled() {
		t.log.Info("teams webhook not configured, skipping notification")
		return
	}
	for _, lang := range languages {
		if err := t.Send(ctx, n, lang); err != nil {
			t.log.Warn("teams notification failed", "language", lang, "error", err)
			continue
		}
		t.log.Info("teams notification sent", "language", lang)
	}
}

func buildPayload(n Notice, lang string) map[string]any {
	generated := n.GeneratedAt.UTC().Format("2006-01-02 15:04:05")
	expires := n.ExpiresAt.UTC().Format("2006-01-02 15:04:05")

	title := "\U0001F4CA Informe Zabbix - Listo para Descargar"
	if lang == "en" {
		title = "\U0001F4CA Zabbix Report - Ready for Download"
	}

	files := make([]string, 0, len(n.Files))
	for _, f := range n.Files {
		files = append(files, f.Name)
	}

	return map[string]any{
		"titulo":           title,
		"cuenta":           n.Account,
		"contenedor":       n.Bucket,
		"fecha":            generated,
		"expira":           expires,
		"validez_horas":    n.ExpiryHours,
		"archivos":         files,
		"mensaje_completo": buildMessage(n, lang, generated, expires),
		"language":         lang,
	}
}

func buildMessage(n Notice, lang, generated, expires string) string {
	var b strings.Builder

	if lang == "en" {
		fmt.Fprintf(&b, "**\U0001F4CA Zabbix Monitoring Report - Ready for Download**\n\n")
		fmt.Fprintf(&b, "**Information:**\n- Generated: %s UTC\n- Link expires: %s UTC\n- Validity: %d hours\n",
			generated, expires, n.ExpiryHours)
		if len(n.Files) > 0 {
			fmt.Fprintf(&b, "\n**Available:**\n\n")
			for i, f := range n.Files {
				fmt.Fprintf(&b, "%d. **%s**  \n   [Download Excel File](%s)\n\n", i+1, f.Name, f.URL)
			}
		}
		fmt.Fprintf(&b, "\n**Important:** Download links expire in %d hours\n", n.ExpiryHours)
		return b.String()
	}

	fmt.Fprintf(&b, "**\U0001F4CA Informe de Monitorización Zabbix - Listo para Descargar**\n\n")
	fmt.Fprintf(&b, "**Información:**\n- Generado: %s UTC\n- Enlaces expiran: %s UTC\n- Validez: %d horas\n",
		generated, expires, n.ExpiryHours)
	if len(n.Files) > 0 {
		fmt.Fprintf(&b, "\n**Disponible:**\n\n")
		for i, f := range n.Files {
			fmt.Fprintf(&b, "%d. **%s**  \n   [Descargar archivo Excel](%s)\n\n", i+1, f.Name, f.URL)
		}
	}
	fmt.Fprintf(&b, "\n**Importante:** Los enlaces de descarga expiran en %d horas\n", n.ExpiryHours)
	return b.String()
}
