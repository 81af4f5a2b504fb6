package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const TournamentsTable = "tournaments"

// Tournament represents a row in the tournaments table. Money amounts are decimal strings.
type Tournament struct {
	ID                    int64           `json:"id"`
	ExternalID            uuid.UUID       `json:"external_id"`
	Title                 string          `json:"title"`
	Slug                  *string         `json:"slug"`
	Tagline               *string         `json:"tagline"`
	Description           *string         `json:"description"`
	Type                  *string         `json:"type"`
	EntryFee              *string         `json:"entry_fee"`
	Prizepool             *string         `json:"prizepool"`
	FirstPrize            *string         `json:"first_prize"`
	SecondPrize           *string         `json:"second_prize"`
	ThirdPrize            *string         `json:"third_prize"`
	MaxParticipants       *int            `json:"max_participants"`
	MinParticipants       *int            `json:"min_participants"`
	MaxTeams              *int            `json:"max_teams"`
	MinTeams              *int            `json:"min_teams"`
	TournamentStartDate   *time.Time      `json:"tournament_start_date"`
	TournamentEndDate     *time.Time      `json:"tournament_end_date"`
	RegistrationStartDate *time.Time      `json:"registration_start_date"`
	RegistrationEndDate   *time.Time      `json:"registration_end_date"`
	Rules                 json.RawMessage `json:"rules"`
	Status                string          `json:"status"`
	IsActive              bool            `json:"is_active"`
	IsDeleted             bool            `json:"is_deleted"`
	DeletedAt             *time.Time      `json:"deleted_at"`
	CreatedBy             *string         `json:"created_by"`
	UpdatedBy             *string         `json:"updated_by"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TournamentSearchFields covers the text columns plus the prize and size columns, matched as text.
var TournamentSearchFields = []string{
	"title", "tagline", "description", "type", "entry_fee", "prizepool",
	"first_prize", "second_prize", "third_prize", "max_participants", "max_teams",
}

var tournamentTable = Table[Tournament]{
	Name: TournamentsTable,
	Columns: []string{
		"id", "external_id", "title", "slug", "tagline", "description", "type",
		"entry_fee", "prizepool", "first_prize", "second_prize", "third_prize",
		"max_participants", "min_participants", "max_teams", "min_teams",
		"tournament_start_date", "tournament_end_date", "registration_start_date", "registration_end_date",
		"rules", "status", "is_active", "is_deleted", "deleted_at",
		"created_by", "updated_by", "created_at", "updated_at",
	},
	Writable: []string{
		"title", "slug", "tagline", "description", "type",
		"entry_fee", "prizepool", "first_prize", "second_prize", "third_prize",
		"max_participants", "min_participants", "max_teams", "min_teams",
		"tournament_start_date", "tournament_end_date", "registration_start_date", "registration_end_date",
		"rules", "status", "is_active", "is_deleted", "deleted_at", "created_by", "updated_by",
	},
	Scan: scanTournament,
}

// TournamentStore is the tournaments repository.
type TournamentStore struct {
	*Repository[Tournament]
}

func NewTournamentStore(db Querier) (*TournamentStore, error) {
	repo, err := NewRepository(db, tournamentTable)
	if err != nil {
		return nil, err
	}
	return &TournamentStore{Repository: repo}, nil
}

func (s *TournamentStore) FindByExternalID(ctx context.Context, id uuid.UUID) (Tournament, bool, error) {
	return s.FindOne(ctx, Predicate{columnExternalID: id})
}

// FindBySlug returns the oldest live tournament with the slug.
func (s *TournamentStore) FindBySlug(ctx context.Context, slug string) (Tournament, bool, error) {
	return s.FindOne(ctx, Predicate{"slug": slug, columnIsDeleted: false})
}

func (s *TournamentStore) TitleExists(ctx context.Context, title string, excludeID *int64) (bool, error) {
	return s.ValueExists(ctx, "title", title, excludeID)
}

func (s *TournamentStore) ChangeStatus(ctx context.Context, id int64, status string) (Tournament, bool, error) {
	return s.Update(ctx, id, Fields{columnStatus: status})
}

func (s *TournamentStore) GetTournamentsWithPagination(ctx context.Context, params ListParams) (Page[Tournament], error) {
	return s.listLive(ctx, params, TournamentSearchFields)
}

func scanTournament(row pgx.Row) (Tournament, error) {
	var t Tournament
	err := row.Scan(
		&t.ID, &t.ExternalID, &t.Title, &t.Slug, &t.Tagline, &t.Description, &t.Type,
		&t.EntryFee, &t.Prizepool, &t.FirstPrize, &t.SecondPrize, &t.ThirdPrize,
		&t.MaxParticipants, &t.MinParticipants, &t.MaxTeams, &t.MinTeams,
		&t.TournamentStartDate, &t.TournamentEndDate, &t.RegistrationStartDate, &t.RegistrationEndDate,
		&t.Rules, &t.Status, &t.IsActive, &t.IsDeleted, &t.DeletedAt,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Tournament{}, err
	}
	return t, nil
}
