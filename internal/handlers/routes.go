package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/trip-planner-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	APIName    = "AI Travel Planner API"
	APIVersion = "1.0.0"
)

var protected = []map[string][]string{{"bearerAuth": {}}, {"cookieAuth": {}}}

type RootOutput struct {
	Body struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Docs    string `json:"docs"`
	}
}

func RegisterRoutes(r chi.Router, authHandler *auth.AuthHandler, tripHandler *TripHandler, expenseHandler *ExpenseHandler, discordLogin bool) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig(APIName, APIVersion)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	huma.Get(api, "/", func(ctx context.Context, _ *struct{}) (*RootOutput, error) {
		out := &RootOutput{}
		out.Body.Name = APIName
		out.Body.Version = APIVersion
		out.Body.Docs = "/docs"
		return out, nil
	})

	// Auth routes
	huma.Post(api, "/auth/register", authHandler.HandleRegister, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
		o.Tags = []string{"auth"}
	})
	huma.Post(api, "/auth/login", authHandler.HandleLogin, func(o *huma.Operation) {
		o.Tags = []string{"auth"}
	})
	huma.Get(api, "/auth/me", authHandler.HandleMe, secured("auth"))
	if discordLogin {
		r.Get("/auth/discord/login", authHandler.HandleDiscordLogin)
		r.Get("/auth/discord/callback", authHandler.HandleDiscordCallback)
	}

	// Trips
	huma.Post(api, "/trips/generate", tripHandler.HandleGenerate, secured("trips"), created)
	huma.Post(api, "/trips", tripHandler.HandleCreate, secured("trips"), created)
	huma.Get(api, "/trips", tripHandler.HandleList, secured("trips"))
	huma.Get(api, "/trips/{id}", tripHandler.HandleGet, secured("trips"))
	huma.Put(api, "/trips/{id}", tripHandler.HandleUpdate, secured("trips"))
	huma.Delete(api, "/trips/{id}", tripHandler.HandleDelete, secured("trips"))
	r.With(authHandler.Middleware).Get("/trips/{id}/calendar.ics", tripHandler.HandleCalendar)

	// Expenses
	huma.Post(api, "/expenses", expenseHandler.HandleCreate, secured("expenses"), created)
	huma.Get(api, "/expenses", expenseHandler.HandleList, secured("expenses"))
	huma.Get(api, "/expenses/analysis/{trip_id}", expenseHandler.HandleAnalyze, secured("expenses"))
	huma.Get(api, "/expenses/{id}", expenseHandler.HandleGet, secured("expenses"))
	huma.Put(api, "/expenses/{id}", expenseHandler.HandleUpdate, secured("expenses"))
	huma.Delete(api, "/expenses/{id}", expenseHandler.HandleDelete, secured("expenses"))

	return api
}

func secured(tag string) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.Security = protected
		o.Tags = []string{tag}
	}
}

func created(o *huma.Operation) {
	o.DefaultStatus = http.StatusCreated
}
