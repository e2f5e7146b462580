package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fooddealsberlin/backend/api/responses"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/maps"
)

// AddressGeocoder resolves free-text addresses. *maps.Client satisfies it.
type AddressGeocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error)
	Autocomplete(ctx context.Context, input, languageCode string) ([]maps.AutocompleteSuggestion, error)
}

type geocodePayload struct {
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

type suggestionPayload struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// GeocodeAddress resolves ?address= to coordinates for clients that want to
// preview a pin before posting.
func GeocodeAddress(geocoder AddressGeocoder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if geocoder == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "geocoding unavailable"))
			return
		}

		address := strings.TrimSpace(r.URL.Query().Get("address"))
		if address == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "address is required"))
			return
		}

		result, err := geocoder.Geocode(ctx, address)
		if err != nil {
			if errors.Is(err, maps.ErrNoResults) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "address could not be resolved"))
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, geocodePayload{
			FormattedAddress: result.FormattedAddress,
			Latitude:         result.Location.Latitude,
			Longitude:        result.Location.Longitude,
		})
	}
}

// GeocodeAutocomplete suggests addresses for a partial ?input= while the user
// is still typing. ?lang= overrides the suggestion language.
func GeocodeAutocomplete(geocoder AddressGeocoder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if geocoder == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "geocoding unavailable"))
			return
		}

		input := strings.TrimSpace(r.URL.Query().Get("input"))
		if input == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "input is required"))
			return
		}
		lang := strings.TrimSpace(r.URL.Query().Get("lang"))

		suggestions, err := geocoder.Autocomplete(ctx, input, lang)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := make([]suggestionPayload, 0, len(suggestions))
		for _, suggestion := range suggestions {
			payload = append(payload, suggestionPayload{
				PlaceID:     suggestion.PlaceID,
				Description: suggestion.Description,
			})
		}
		responses.WriteSuccess(w, payload)
	}
}
