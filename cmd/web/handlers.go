package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/myrjola/plottwist/internal/game"
	"github.com/myrjola/plottwist/internal/models"
)

// todaysMystery serves today's mystery and generates it on the fly when it is missing.
func (app *application) todaysMystery(w http.ResponseWriter, r *http.Request) {
	view, err := app.game.GetOrCreateTodaysMystery(r.Context())
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "get today's mystery"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, view)
}

func (app *application) nextScenario(w http.ResponseWriter, r *http.Request) {
	var req game.AdvanceRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.gameError(w, r, err)
		return
	}
	payload, err := app.game.AdvanceScenario(r.Context(), req)
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "advance scenario"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, payload)
}

type generateRequest struct {
	// Date is a calendar day in the form 2006-01-02. Empty means today.
	Date            string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ForceRegenerate bool   `json:"force_regenerate"`
}

type generateResponse struct {
	DailyMysteryID int64  `json:"daily_mystery_id"`
	Date           string `json:"date"`
	Theme          string `json:"theme"`
	ArtStyleName   string `json:"art_style_name"`
}

func (app *application) generateDailyMystery(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := app.decodeJSON(w, r, &req); err != nil {
		app.gameError(w, r, err)
		return
	}
	date := time.Now()
	if req.Date != "" {
		var err error
		if date, err = time.Parse(models.DateLayout, req.Date); err != nil {
			app.gameError(w, r, fmt.Errorf("%w: %w", ErrInvalidBody, err))
			return
		}
	}

	m, err := app.game.GenerateDailyMystery(r.Context(), date, req.ForceRegenerate)
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "generate daily mystery"))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, generateResponse{
		DailyMysteryID: m.ID,
		Date:           m.DateString(),
		Theme:          m.Theme,
		ArtStyleName:   m.ArtStyle.Name,
	})
}
