package services

import (
	"log/slog"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
	"github.com/reglet-dev/qmcchain/internal/application/ports"
	"github.com/reglet-dev/qmcchain/internal/domain/defaults"
)

// ProfilesUseCase inspects the default profiles a request would see.
type ProfilesUseCase struct {
	profiles ports.ProfileSource
	builtin  *defaults.Store
	logger   *slog.Logger
}

// NewProfilesUseCase creates a profile inspection use case.
func NewProfilesUseCase(profiles ports.ProfileSource, builtin *defaults.Store, logger *slog.Logger) *ProfilesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if builtin == nil {
		builtin = defaults.NewStore()
	}
	return &ProfilesUseCase{profiles: profiles, builtin: builtin, logger: logger}
}

func (uc *ProfilesUseCase) store(paths []string) (*defaults.Store, error) {
	store := uc.builtin
	for _, p := range paths {
		if uc.profiles == nil {
			return nil, apperrors.NewConfigurationError("profiles", "no profile source configured", nil)
		}
		extra, err := uc.profiles.LoadProfiles(p)
		if err != nil {
			return nil, apperrors.NewValidationError("profiles", "failed to load profiles from "+p, err.Error())
		}
		store = store.Merge(extra)
	}
	return store, nil
}

// List summarizes every kind, in kind order.
func (uc *ProfilesUseCase) List(paths []string) ([]dto.ProfileSummary, error) {
	store, err := uc.store(paths)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProfileSummary, 0, len(defaults.Kinds))
	for _, kind := range defaults.Kinds {
		names := store.Names(kind)
		methods := store.Methods(kind)
		if len(names) == 0 && len(methods) == 0 {
			continue
		}
		s := dto.ProfileSummary{Kind: kind, Names: names}
		s.Latest, _ = store.Latest(kind)
		for _, m := range methods {
			if s.Overlays == nil {
				s.Overlays = make(map[string][]string, len(methods))
			}
			s.Overlays[m] = store.OverlayNames(kind, m)
		}
		out = append(out, s)
	}
	uc.logger.Debug("profiles listed", "kinds", len(out))
	return out, nil
}

// Show resolves one profile. With a method the overlay is returned instead;
// a missing overlay is an error here even though assembly treats it as empty.
func (uc *ProfilesUseCase) Show(paths []string, kind, name, method string) (*dto.ProfileDetail, error) {
	if !defaults.IsKind(kind) {
		return nil, apperrors.NewValidationError("kind", "unknown profile kind "+kind, defaults.Kinds...)
	}
	store, err := uc.store(paths)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = defaults.Latest
	}

	if method != "" {
		overlay, ok := store.Overlay(kind, method, name)
		if !ok {
			return nil, apperrors.NewValidationError("method", "no "+method+" overlay for "+kind+"/"+name)
		}
		return &dto.ProfileDetail{Kind: kind, Name: overlay.Name(), Method: method, Values: overlay.Values()}, nil
	}

	p, err := store.Profile("profiles", kind, name)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileDetail{Kind: kind, Name: p.Name(), Values: p.Values()}, nil
}
