package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/game"
	"github.com/myrjola/plottwist/internal/models"
)

// ErrUnexpectedStatus is returned when the server answers with a status other than the expected one.
var ErrUnexpectedStatus = errors.NewSentinel("unexpected status code")

// Client talks to the JSON API.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 3 * time.Minute}, //nolint:exhaustruct,mnd // generation may take a while
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	for {
		resp, err := c.Get(ctx, urlPath)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// PostJSON posts body encoded as JSON and returns the response.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// decode reads a JSON response with the wanted status into dst and closes the body.
func decode(resp *http.Response, wantStatus int, dst any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode != wantStatus {
		return errors.Wrap(ErrUnexpectedStatus, "check status",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
	}
	if err = json.Unmarshal(body, dst); err != nil {
		return errors.Wrap(err, "unmarshal body")
	}
	return nil
}

// TodaysMystery fetches today's mystery.
func (c *Client) TodaysMystery(ctx context.Context) (models.DailyMysteryPublicView, error) {
	var view models.DailyMysteryPublicView
	resp, err := c.Get(ctx, "/api/v1/mysteries/today")
	if err != nil {
		return view, errors.Wrap(err, "get today's mystery")
	}
	if err = decode(resp, http.StatusOK, &view); err != nil {
		return view, errors.Wrap(err, "decode today's mystery")
	}
	return view, nil
}

// NextScenario advances the story by one player choice.
func (c *Client) NextScenario(ctx context.Context, req game.AdvanceRequest) (models.ScenarioPayload, error) {
	var payload models.ScenarioPayload
	resp, err := c.PostJSON(ctx, "/api/v1/mysteries/next-scenario", req)
	if err != nil {
		return payload, errors.Wrap(err, "post next scenario")
	}
	if err = decode(resp, http.StatusOK, &payload); err != nil {
		return payload, errors.Wrap(err, "decode next scenario")
	}
	return payload, nil
}

// PlayThrough plays today's mystery to the end, always picking the first offered choice, and returns every
// generated scenario.
func (c *Client) PlayThrough(ctx context.Context, maxRounds int) ([]models.ScenarioPayload, error) {
	view, err := c.TodaysMystery(ctx)
	if err != nil {
		return nil, err
	}
	if len(view.InitialChoices) == 0 {
		return nil, errors.New("no initial choices", slog.Int64("mystery_id", view.DailyMysteryID))
	}

	var (
		scenarios []models.ScenarioPayload
		path      []models.GameplayTurn
		last      = view.BaseStoryText
		choice    = view.InitialChoices[0]
	)
	for range maxRounds {
		payload, nextErr := c.NextScenario(ctx, game.AdvanceRequest{
			DailyMysteryID:            view.DailyMysteryID,
			PathSoFar:                 path,
			LastPresentedScenarioText: &last,
			CurrentChoice:             choice,
		})
		if nextErr != nil {
			return scenarios, errors.Wrap(nextErr, "play round", slog.Int("round", len(path)+1))
		}
		scenarios = append(scenarios, payload)
		if payload.IsFinalRound {
			return scenarios, nil
		}
		if len(payload.Choices) == 0 {
			return scenarios, errors.New("no choices offered", slog.Int("round", payload.CurrentRoundGenerated))
		}
		path = append(path, models.GameplayTurn{ScenarioText: last, ChosenAction: choice})
		last = payload.ScenarioText
		choice = payload.Choices[0]
	}
	return scenarios, errors.New("story did not end", slog.Int("max_rounds", maxRounds))
}
