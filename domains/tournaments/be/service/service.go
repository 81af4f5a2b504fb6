package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/zenGate-Global/tournament-admin/domains/tournaments/be/repo"
	"github.com/zenGate-Global/tournament-admin/platform/go/domainerr"
	"github.com/zenGate-Global/tournament-admin/platform/go/persistence"
	"github.com/zenGate-Global/tournament-admin/platform/go/resource"
	"github.com/zenGate-Global/tournament-admin/platform/go/validation"
)

// Tournament statuses.
const (
	StatusUpcoming = "UPCOMING"
	StatusLive     = "LIVE"
	StatusClosed   = "CLOSED"
	StatusRemoved  = "REMOVED"
)

const msgTitleTaken = "tournament with this title already exists"

// Statuses lists the accepted tournament statuses.
var Statuses = []string{StatusUpcoming, StatusLive, StatusClosed, StatusRemoved}

// SortableFields are the columns the tournaments list may be ordered by.
// Money columns are stored as text and would sort lexically, so they are left out.
var SortableFields = []string{
	"created_at", "updated_at", "title", "status",
	"max_participants", "max_teams", "tournament_start_date", "tournament_end_date",
	"registration_start_date", "registration_end_date",
}

// Details carries the optional tournament fields shared by create and update.
// Dates are RFC 3339 timestamps or plain YYYY-MM-DD dates. A JSON null in Rules clears them.
type Details struct {
	Tagline               *string
	Description           *string
	Type                  *string
	EntryFee              *string
	Prizepool             *string
	FirstPrize            *string
	SecondPrize           *string
	ThirdPrize            *string
	MaxParticipants       *int
	MinParticipants       *int
	MaxTeams              *int
	MinTeams              *int
	TournamentStartDate   *string
	TournamentEndDate     *string
	RegistrationStartDate *string
	RegistrationEndDate   *string
	Rules                 json.RawMessage
	Status                *string
	IsActive              *bool
}

// CreateInput represents the payload required to create a new tournament.
type CreateInput struct {
	Title string
	Details
}

// UpdateInput carries the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Title *string
	Details
}

// Service defines the business operations for the tournaments domain.
type Service interface {
	List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Tournament], error)
	Get(ctx context.Context, id int64) (persistence.Tournament, error)
	GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.Tournament, error)
	GetBySlug(ctx context.Context, slug string) (persistence.Tournament, error)
	Create(ctx context.Context, input CreateInput) (persistence.Tournament, error)
	Update(ctx context.Context, id int64, input UpdateInput) (persistence.Tournament, error)
	ChangeStatus(ctx context.Context, id int64, status string) (persistence.Tournament, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) error
	BulkPurge(ctx context.Context, ids []int64) error
}

type service struct {
	repo      repo.Repository
	lifecycle resource.Lifecycle[persistence.Tournament]
	rules     *RulesValidator
}

// New constructs a tournaments Service instance backed by the provided repository.
func New(r repo.Repository, rules *RulesValidator) Service {
	if r == nil {
		panic("tournaments repository is required")
	}
	if rules == nil {
		panic("rules validator is required")
	}
	return &service{
		repo: r,
		lifecycle: resource.NewLifecycle[persistence.Tournament](r, "tournament",
			func(t persistence.Tournament) bool { return t.IsDeleted },
			map[string]string{"tournaments_title_live_key": msgTitleTaken}),
		rules: rules,
	}
}

func (s *service) List(ctx context.Context, params persistence.ListParams) (persistence.Page[persistence.Tournament], error) {
	if params.Status != nil {
		fieldErrors := validation.FieldErrors{}
		fieldErrors.Enum("status", *params.Status, Statuses...)
		if err := fieldErrors.Err(); err != nil {
			return persistence.Page[persistence.Tournament]{}, err
		}
	}
	return s.repo.GetTournamentsWithPagination(ctx, params)
}

func (s *service) Get(ctx context.Context, id int64) (persistence.Tournament, error) {
	return s.lifecycle.Live(ctx, id)
}

func (s *service) GetByExternalID(ctx context.Context, id uuid.UUID) (persistence.Tournament, error) {
	return s.lifecycle.LiveByExternalID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (persistence.Tournament, error) {
	normalized, err := persistence.NormalizeSlug(slug)
	if err != nil {
		return persistence.Tournament{}, domainerr.NotFound("tournament not found")
	}

	tournament, found, err := s.repo.FindBySlug(ctx, normalized)
	if err != nil {
		return persistence.Tournament{}, err
	}
	if !found || tournament.IsDeleted {
		return persistence.Tournament{}, domainerr.NotFound("tournament not found")
	}
	return tournament, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (persistence.Tournament, error) {
	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	title := normalizeTitle(input.Title)
	if title == "" {
		fieldErrors.Add("title", "title is required")
	} else {
		fields["title"] = title
		fields["slug"] = persistence.SlugFromTitle(title)
	}

	window := s.applyDetails(fieldErrors, fields, input.Details, persistence.Tournament{})
	window.check(fieldErrors)

	if err := fieldErrors.Err(); err != nil {
		return persistence.Tournament{}, err
	}

	if err := resource.CheckUnique(ctx, s.repo.TitleExists, title, nil, msgTitleTaken); err != nil {
		return persistence.Tournament{}, err
	}

	created, err := s.repo.Create(ctx, fields)
	if err != nil {
		return persistence.Tournament{}, s.lifecycle.MapConflict(err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (persistence.Tournament, error) {
	existing, err := s.lifecycle.Live(ctx, id)
	if err != nil {
		return persistence.Tournament{}, err
	}

	fieldErrors := validation.FieldErrors{}
	fields := persistence.Fields{}

	var title string
	if input.Title != nil {
		title = normalizeTitle(*input.Title)
		if title == "" {
			fieldErrors.Add("title", "title should not be empty")
		} else if title != existing.Title {
			fields["title"] = title
			fields["slug"] = persistence.SlugFromTitle(title)
		}
	}

	window := s.applyDetails(fieldErrors, fields, input.Details, existing)
	window.check(fieldErrors)

	if err := fieldErrors.Err(); err != nil {
		return persistence.Tournament{}, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	if _, ok := fields["title"]; ok {
		if err := resource.CheckUnique(ctx, s.repo.TitleExists, title, &existing.ID, msgTitleTaken); err != nil {
			return persistence.Tournament{}, err
		}
	}

	updated, found, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return persistence.Tournament{}, s.lifecycle.MapConflict(err)
	}
	if !found {
		return s.lifecycle.Live(ctx, id)
	}
	return updated, nil
}

func (s *service) ChangeStatus(ctx context.Context, id int64, status string) (persistence.Tournament, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	fieldErrors := validation.FieldErrors{}
	fieldErrors.Enum("status", status, Statuses...)
	if err := fieldErrors.Err(); err != nil {
		return persistence.Tournament{}, err
	}
	if _, err := s.lifecycle.Live(ctx, id); err != nil {
		return persistence.Tournament{}, err
	}

	updated, found, err := s.repo.ChangeStatus(ctx, id, status)
	if err != nil {
		return persistence.Tournament{}, err
	}
	if !found {
		return s.lifecycle.Live(ctx, id)
	}
	return updated, nil
}

func (s *service) SoftDelete(ctx context.Context, id int64) error {
	return s.lifecycle.SoftDelete(ctx, id)
}

func (s *service) Restore(ctx context.Context, id int64) error {
	return s.lifecycle.Restore(ctx, id)
}

func (s *service) Purge(ctx context.Context, id int64) error {
	return s.lifecycle.Purge(ctx, id)
}

func (s *service) BulkPurge(ctx context.Context, ids []int64) error {
	return s.lifecycle.BulkPurge(ctx, ids)
}

// normalizeTitle trims and NFC-normalizes so visually equal titles compare equal.
func normalizeTitle(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// schedule holds the effective limits and dates after applying changes to the stored row.
type schedule struct {
	minParticipants   *int
	maxParticipants   *int
	minTeams          *int
	maxTeams          *int
	tournamentStart   *time.Time
	tournamentEnd     *time.Time
	registrationStart *time.Time
	registrationEnd   *time.Time
}

func (sc schedule) check(fieldErrors validation.FieldErrors) {
	if sc.minParticipants != nil && sc.maxParticipants != nil && *sc.minParticipants > *sc.maxParticipants {
		fieldErrors.Add("min_participants", "min_participants should not exceed max_participants")
	}
	if sc.minTeams != nil && sc.maxTeams != nil && *sc.minTeams > *sc.maxTeams {
		fieldErrors.Add("min_teams", "min_teams should not exceed max_teams")
	}
	if sc.tournamentStart != nil && sc.tournamentEnd != nil && sc.tournamentEnd.Before(*sc.tournamentStart) {
		fieldErrors.Add("tournament_end_date", "tournament_end_date should not be before tournament_start_date")
	}
	if sc.registrationStart != nil && sc.registrationEnd != nil && sc.registrationEnd.Before(*sc.registrationStart) {
		fieldErrors.Add("registration_end_date", "registration_end_date should not be before registration_start_date")
	}
}

func (s *service) applyDetails(fieldErrors validation.FieldErrors, fields persistence.Fields, in Details, current persistence.Tournament) schedule {
	persistence.SetText(fields, "tagline", in.Tagline)
	persistence.SetText(fields, "description", in.Description)
	persistence.SetText(fields, "type", in.Type)
	persistence.SetIfPresent(fields, "is_active", in.IsActive)

	for _, money := range []struct {
		column string
		value  *string
	}{
		{"entry_fee", in.EntryFee},
		{"prizepool", in.Prizepool},
		{"first_prize", in.FirstPrize},
		{"second_prize", in.SecondPrize},
		{"third_prize", in.ThirdPrize},
	} {
		persistence.SetText(fields, money.column, money.value)
		if amount, ok := fields[money.column].(string); ok && !validation.Decimal(amount) {
			fieldErrors.Add(money.column, money.column+" should be a decimal string with at most 2 decimal places")
		}
	}

	sc := schedule{
		minParticipants:   setCount(fieldErrors, fields, "min_participants", in.MinParticipants, current.MinParticipants),
		maxParticipants:   setCount(fieldErrors, fields, "max_participants", in.MaxParticipants, current.MaxParticipants),
		minTeams:          setCount(fieldErrors, fields, "min_teams", in.MinTeams, current.MinTeams),
		maxTeams:          setCount(fieldErrors, fields, "max_teams", in.MaxTeams, current.MaxTeams),
		tournamentStart:   setDate(fieldErrors, fields, "tournament_start_date", in.TournamentStartDate, current.TournamentStartDate),
		tournamentEnd:     setDate(fieldErrors, fields, "tournament_end_date", in.TournamentEndDate, current.TournamentEndDate),
		registrationStart: setDate(fieldErrors, fields, "registration_start_date", in.RegistrationStartDate, current.RegistrationStartDate),
		registrationEnd:   setDate(fieldErrors, fields, "registration_end_date", in.RegistrationEndDate, current.RegistrationEndDate),
	}

	if len(in.Rules) > 0 {
		if bytes.Equal(bytes.TrimSpace(in.Rules), []byte("null")) {
			fields["rules"] = nil
		} else if err := s.rules.Validate(in.Rules); err != nil {
			fieldErrors.Add("rules", "rules should be a list of rules or an object")
		} else {
			fields["rules"] = in.Rules
		}
	}

	if in.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*in.Status))
		fieldErrors.Enum("status", status, Statuses...)
		fields["status"] = status
	}

	return sc
}

func setCount(fieldErrors validation.FieldErrors, fields persistence.Fields, column string, value, current *int) *int {
	if value == nil {
		return current
	}
	if *value < 0 {
		fieldErrors.Add(column, column+" should not be negative")
	}
	fields[column] = *value
	return value
}

var dateLayouts = []string{time.RFC3339Nano, time.DateOnly}

func setDate(fieldErrors validation.FieldErrors, fields persistence.Fields, column string, value *string, current *time.Time) *time.Time {
	if value == nil {
		return current
	}
	raw := strings.TrimSpace(*value)
	if raw == "" {
		fields[column] = nil
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			fields[column] = parsed
			return &parsed
		}
	}
	fieldErrors.Add(column, column+" should be an RFC 3339 timestamp or a YYYY-MM-DD date")
	return current
}
