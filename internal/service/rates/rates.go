// Package rates binds the daily price sheet to the generic page state.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

// Store is the part of the record service the price pages use.
type Store interface {
	RatesByDate(ctx context.Context, date string) (models.PriceRecord, error)
	CreateRates(ctx context.Context, date string, entries []models.RateEntry) error
	PatchRate(ctx context.Context, date, customer string, group models.RateGroup, pair models.BoilerPair) error
	DeleteRate(ctx context.Context, date, customer string) error
	Customers(ctx context.Context) ([]models.Customer, error)
}

// ErrNoCustomers is returned when a bulk create would send an empty record.
var ErrNoCustomers = errors.New("no customers to create prices for")

// Field names shared by every price group.
const (
	FieldBig       = "big"
	FieldSmall     = "small"
	FieldCustomers = "customers"
)

var groupLabels = map[models.RateGroup]string{
	models.RateGroupProposal: "প্রস্তাবিত দাম",
	models.RateGroupActual:   "বিক্রয় মূল্য",
	models.RateGroupPiece:    "পিস",
}

func pairGroup(group models.RateGroup) viewstate.Group {
	return viewstate.Group{
		Name:  string(group),
		Label: groupLabels[group],
		Fields: []viewstate.Field{
			{Name: FieldBig, Label: "বড় বয়লার", Kind: viewstate.KindNumber, Required: true},
			{Name: FieldSmall, Label: "ছোট বয়লার", Kind: viewstate.KindNumber, Required: true},
		},
	}
}

// Sheet reads a day's price record. It is the read-only source of the dashboard.
type Sheet struct {
	store  Store
	logger *zap.Logger
}

// NewSheet creates a read-only price source.
func NewSheet(store Store, logger *zap.Logger) *Sheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sheet{store: store, logger: logger}
}

// List returns the entries of date in record order.
func (s *Sheet) List(ctx context.Context, date string) ([]models.RateEntry, error) {
	record, err := s.store.RatesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("price sheet loaded", zap.String("date", date), zap.Int("entries", len(record.Entries)))
	return record.Entries, nil
}

// Prices edits a day's price sheet one customer group at a time.
type Prices struct {
	*Sheet
}

// NewPrices creates the editable price binding.
func NewPrices(store Store, logger *zap.Logger) *Prices {
	return &Prices{Sheet: NewSheet(store, logger)}
}

// Key identifies an entry by customer name, unique within a day.
func (p *Prices) Key(row models.RateEntry) string { return row.CustomerName }

// Groups are the proposal, actual and piece pairs.
func (p *Prices) Groups() []viewstate.Group {
	groups := make([]viewstate.Group, 0, len(models.RateGroups))
	for _, g := range models.RateGroups {
		groups = append(groups, pairGroup(g))
	}
	return groups
}

// Draft copies one pair of row.
func (p *Prices) Draft(row models.RateEntry, group string) (map[string]string, bool) {
	pair := row.Pair(models.RateGroup(group))
	return map[string]string{
		FieldBig:   viewstate.FormatNumber(pair.Big),
		FieldSmall: viewstate.FormatNumber(pair.Small),
	}, true
}

// Save patches only the draft's group of the customer's entry.
func (p *Prices) Save(ctx context.Context, date string, draft viewstate.Draft, values viewstate.Values) error {
	group, ok := models.ParseRateGroup(draft.Group)
	if !ok {
		return fmt.Errorf("%s: %w", draft.Group, viewstate.ErrUnknownGroup)
	}
	pair := models.BoilerPair{Big: values.Number(FieldBig), Small: values.Number(FieldSmall)}
	return p.store.PatchRate(ctx, date, draft.Key, group, pair)
}

// Delete removes a customer's entry from the day.
func (p *Prices) Delete(ctx context.Context, date, customer string) error {
	return p.store.DeleteRate(ctx, date, customer)
}

// Proposals lists customers for a day and creates that day's record with one
// proposal price for all of them or a chosen subset. Actual prices and pieces
// start at zero.
type Proposals struct {
	store  Store
	logger *zap.Logger
}

// NewProposals creates the bulk-create binding.
func NewProposals(store Store, logger *zap.Logger) *Proposals {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proposals{store: store, logger: logger}
}

// List returns every customer; the date filter only scopes the created record.
func (p *Proposals) List(ctx context.Context, _ string) ([]models.Customer, error) {
	return p.store.Customers(ctx)
}

// Key identifies customers by name.
func (p *Proposals) Key(row models.Customer) string { return row.Name }

// Groups holds the single proposal group plus the optional customer subset,
// newline separated.
func (p *Proposals) Groups() []viewstate.Group {
	g := pairGroup(models.RateGroupProposal)
	g.Fields = append(g.Fields, viewstate.Field{Name: FieldCustomers, Label: "গ্রাহক", Kind: viewstate.KindText})
	return []viewstate.Group{g}
}

// Draft is never opened from a customer row.
func (p *Proposals) Draft(models.Customer, string) (map[string]string, bool) {
	return pairGroup(models.RateGroupProposal).Blank(), false
}

// Save creates the day's record. An empty subset means every customer.
func (p *Proposals) Save(ctx context.Context, date string, _ viewstate.Draft, values viewstate.Values) error {
	names := SplitCustomers(values.Text(FieldCustomers))
	if len(names) == 0 {
		customers, err := p.store.Customers(ctx)
		if err != nil {
			return err
		}
		for _, c := range customers {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 {
		return ErrNoCustomers
	}

	proposal := models.BoilerPair{Big: values.Number(FieldBig), Small: values.Number(FieldSmall)}
	entries := make([]models.RateEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, models.RateEntry{CustomerName: name, Proposal: proposal})
	}

	p.logger.Info("creating proposal prices",
		zap.String("date", date),
		zap.Int("customers", len(entries)))
	return p.store.CreateRates(ctx, date, entries)
}

// JoinCustomers encodes a customer subset for the customers field.
func JoinCustomers(names []string) string {
	return strings.Join(names, "\n")
}

// SplitCustomers decodes the customers field, dropping blanks and duplicates.
func SplitCustomers(value string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, line := range strings.Split(value, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
