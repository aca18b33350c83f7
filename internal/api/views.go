package api

import (
	"encoding/json"
	"net/http"
	"ozondash/internal/analytics"
	"ozondash/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// ViewRequest is the body of a saved view. Dates take the same forms as the
// dashboard query and are stored as YYYY-MM-DD.
type ViewRequest struct {
	Scope  string `json:"scope" validate:"omitempty,scope"`
	Period string `json:"period" validate:"required,oneof=day week month year custom"`
	Anchor string `json:"anchor" validate:"omitempty,civildate"`
	Start  string `json:"start" validate:"omitempty,civildate"`
	End    string `json:"end" validate:"omitempty,civildate"`
}

func (api *API) decodeView(r *http.Request) (domain.ViewState, error) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.ViewState{}, errors.Wrap(err, "invalid body")
	}
	if err := api.validate.Struct(req); err != nil {
		return domain.ViewState{}, err
	}
	if req.Period == "custom" && (req.Start == "" || req.End == "") {
		return domain.ViewState{}, errors.New("custom period needs start and end dates")
	}

	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		return domain.ViewState{}, err
	}

	view := domain.ViewState{Scope: scope, Period: req.Period}
	for _, d := range []struct {
		in  string
		out *string
	}{
		{req.Anchor, &view.Anchor},
		{req.Start, &view.Start},
		{req.End, &view.End},
	} {
		if d.in == "" {
			continue
		}
		t, err := analytics.ParseDate(d.in, api.loc)
		if err != nil {
			return domain.ViewState{}, err
		}
		*d.out = analytics.DateKey(t)
	}

	if view.Period == string(analytics.PeriodCustom) {
		start, _ := analytics.ParseDate(view.Start, api.loc)
		end, _ := analytics.ParseDate(view.End, api.loc)
		if _, err := analytics.NewPeriod(view.Period, end, start, end); err != nil {
			return domain.ViewState{}, err
		}
	}
	return view, nil
}

func (api *API) CreateView(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "CreateView")

	view, err := api.decodeView(r)
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := api.views.Save(r.Context(), view)
	if err != nil {
		log.Errorf("failed to save view: %v", err)
		http.Error(w, "Failed to save view", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	respondWithJSON(w, saved)
}

func (api *API) GetView(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "GetView")

	id := chi.URLParam(r, "id")
	err := api.validate.Var(id, "required,uuid")
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := api.views.FindByID(r.Context(), id)
	if err != nil {
		respondWithViewError(w, api, err)
		return
	}

	respondWithJSON(w, view)
}

func (api *API) UpdateView(w http.ResponseWriter, r *http.Request) {
	log := api.log.With("method", "UpdateView")

	id := chi.URLParam(r, "id")
	err := api.validate.Var(id, "required,uuid")
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := api.decodeView(r)
	if err != nil {
		log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := api.views.FindByID(r.Context(), id); err != nil {
		respondWithViewError(w, api, err)
		return
	}

	view.ID = id
	saved, err := api.views.Save(r.Context(), view)
	if err != nil {
		respondWithViewError(w, api, err)
		return
	}

	respondWithJSON(w, saved)
}

func (api *API) DeleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := api.validate.Var(id, "required,uuid")
	if err != nil {
		api.log.Errorf("validation error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := api.views.Delete(r.Context(), id); err != nil {
		respondWithViewError(w, api, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondWithViewError(w http.ResponseWriter, api *API, err error) {
	if errors.Is(err, domain.ErrViewNotFound) {
		http.Error(w, "View not found", http.StatusNotFound)
		return
	}

	api.log.Errorf("view store: %v", err)
	http.Error(w, "Failed to access views", http.StatusInternalServerError)
}
