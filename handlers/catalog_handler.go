package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/models"
)

// CardCatalog is what the catalog endpoints read; *catalog.Catalog satisfies it.
type CardCatalog interface {
	IdentityNames(ctx context.Context, side models.Side) ([]string, error)
	ResolveIdentity(ctx context.Context, side models.Side, query string) (catalog.Identity, bool, error)
	CardByStrippedTitle(ctx context.Context, name string) (catalog.Card, error)
}

type CatalogHandler struct {
	catalog CardCatalog
}

func NewCatalogHandler(c CardCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func sideFromQuery(r *http.Request) (models.Side, error) {
	side := models.Side(r.URL.Query().Get("side"))
	if side != models.SideCorp && side != models.SideRunner {
		return "", fmt.Errorf("side must be %q or %q", models.SideCorp, models.SideRunner)
	}
	return side, nil
}

// ListIdentities отдаёт список для выбора ID: сначала легальные, затем
// разделитель и все остальные. С параметром q возвращает одно совпадение.
func (h *CatalogHandler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	side, err := sideFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		identity, ok, err := h.catalog.ResolveIdentity(r.Context(), side, q)
		if err != nil {
			h.catalogUnavailable(w, r, err)
			return
		}
		if !ok {
			notFoundResponse(w, r, fmt.Sprintf("no %s identity matches %q", side, q))
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"identity": identity, "color": catalog.FactionColor(identity.Faction)}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	names, err := h.catalog.IdentityNames(r.Context(), side)
	if err != nil {
		h.catalogUnavailable(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"side": side, "identities": names}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		badRequestResponse(w, r, errors.New("title query parameter is required"))
		return
	}

	card, err := h.catalog.CardByStrippedTitle(r.Context(), title)
	if err != nil {
		if errors.Is(err, catalog.ErrCardNotFound) {
			notFoundResponse(w, r, err.Error())
			return
		}
		h.catalogUnavailable(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"card": card, "color": catalog.FactionColor(card.Faction)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Без кэша и без NetrunnerDB отвечать нечем.
func (h *CatalogHandler) catalogUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "card catalog unavailable", slog.Any("error", err))
	errorResponse(w, r, http.StatusServiceUnavailable, "card catalog is unavailable")
}
