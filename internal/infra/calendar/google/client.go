package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/models"
)

// Quantos dias à frente o reconcile inbound enxerga. Eventos além disso
// entram na próxima janela de varredura.
const lookaheadDays = 60

// Client fala com o Google Calendar em nome de cada profissional
// conectado, usando o token OAuth guardado em CalendarAccount.AuthJSON.
// Todo erro sai classificado (Transient/Revoked/Gone) para o calsync.
type Client struct {
	oauthCfg *oauth2.Config
}

func NewClient(credentialsFile string) (*Client, error) {
	credJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("google: reading credentials file: %w", err)
	}
	oauthCfg, err := googleoauth.ConfigFromJSON(credJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %w", err)
	}
	return &Client{oauthCfg: oauthCfg}, nil
}

// AuthURL inicia o fluxo de conexão de um profissional.
func (c *Client) AuthURL(state string) string {
	return c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange troca o code do callback OAuth pelo token serializado
// que vai para CalendarAccount.AuthJSON.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	token, err := c.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", classify(err)
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *Client) CreateEvent(
	ctx context.Context,
	account *models.CalendarAccount,
	ap *models.Appointment,
) (string, error) {

	svc, err := c.calendarSvc(ctx, account)
	if err != nil {
		return "", err
	}

	created, err := svc.Events.
		Insert(calendarID(account), newGoogleEvent(ap)).
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err)
	}
	return created.Id, nil
}

func (c *Client) UpdateEvent(
	ctx context.Context,
	account *models.CalendarAccount,
	ap *models.Appointment,
) error {

	if ap.ExternalEventID == nil {
		return calsync.Gone(errors.New("appointment has no external event"))
	}

	svc, err := c.calendarSvc(ctx, account)
	if err != nil {
		return err
	}

	_, err = svc.Events.
		Update(calendarID(account), *ap.ExternalEventID, newGoogleEvent(ap)).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *Client) DeleteEvent(
	ctx context.Context,
	account *models.CalendarAccount,
	externalEventID string,
) error {

	svc, err := c.calendarSvc(ctx, account)
	if err != nil {
		return err
	}

	err = svc.Events.
		Delete(calendarID(account), externalEventID).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

// FetchRecentEvents lista os próximos eventos do calendário do
// profissional, expandindo recorrências em instâncias individuais.
func (c *Client) FetchRecentEvents(
	ctx context.Context,
	account *models.CalendarAccount,
) ([]calsync.ExternalEvent, error) {

	svc, err := c.calendarSvc(ctx, account)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	call := svc.Events.
		List(calendarID(account)).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, lookaheadDays).Format(time.RFC3339))

	var (
		out           []calsync.ExternalEvent
		nextPageToken string
	)
	for {
		events, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			return nil, classify(err)
		}
		for _, item := range events.Items {
			ev, ok := newExternalEvent(item)
			if ok {
				out = append(out, ev)
			}
		}
		nextPageToken = events.NextPageToken
		if nextPageToken == "" {
			return out, nil
		}
	}
}

func (c *Client) calendarSvc(
	ctx context.Context,
	account *models.CalendarAccount,
) (*calendar.Service, error) {

	var token *oauth2.Token
	if err := json.Unmarshal([]byte(account.AuthJSON), &token); err != nil {
		// token corrompido nunca volta a funcionar sozinho
		return nil, calsync.Revoked(fmt.Errorf("google: parsing stored token: %w", err))
	}

	httpClient := c.oauthCfg.Client(ctx, token)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, classify(err)
	}
	return svc, nil
}

func calendarID(account *models.CalendarAccount) string {
	if account.GoogleCalendarID != "" {
		return account.GoogleCalendarID
	}
	return "primary"
}

func newGoogleEvent(ap *models.Appointment) *calendar.Event {
	summary := "Atendimento"
	if ap.IsPersonalBlock {
		summary = "Bloqueio de agenda"
	} else if len(ap.Services) > 0 {
		names := make([]string, 0, len(ap.Services))
		for _, svc := range ap.Services {
			names = append(names, svc.Name)
		}
		summary = strings.Join(names, " + ")
	}

	return &calendar.Event{
		Summary:     summary,
		Description: ap.Notes,
		Start: &calendar.EventDateTime{
			DateTime: ap.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: ap.EndTime.Format(time.RFC3339),
		},
	}
}

func newExternalEvent(item *calendar.Event) (calsync.ExternalEvent, bool) {
	// eventos de dia inteiro vêm sem DateTime; não bloqueiam horário
	if item.Start == nil || item.End == nil ||
		item.Start.DateTime == "" || item.End.DateTime == "" {
		return calsync.ExternalEvent{}, false
	}

	starts, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return calsync.ExternalEvent{}, false
	}
	ends, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return calsync.ExternalEvent{}, false
	}

	return calsync.ExternalEvent{
		ID:       item.Id,
		Summary:  item.Summary,
		StartsAt: starts,
		EndsAt:   ends,
	}, true
}

// classify mapeia erros do provedor para a taxonomia do calsync:
// 401/403 de credencial viram Revoked, 404/410 viram Gone e o resto
// (rede, 429, 5xx) fica Transient para o retry resolver.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case 401, 403:
			if isRateLimited(gErr) {
				return calsync.Transient(err)
			}
			return calsync.Revoked(err)
		case 404, 410:
			return calsync.Gone(err)
		}
		return calsync.Transient(err)
	}

	var oauthErr *oauth2.RetrieveError
	if errors.As(err, &oauthErr) {
		// invalid_grant = refresh token revogado ou expirado
		if oauthErr.ErrorCode == "invalid_grant" {
			return calsync.Revoked(err)
		}
		return calsync.Transient(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return calsync.Transient(err)
	}
	return calsync.Transient(err)
}

// o Google devolve rate limit como 403 com reason própria
func isRateLimited(gErr *googleapi.Error) bool {
	for _, item := range gErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}

var _ calsync.Client = (*Client)(nil)
