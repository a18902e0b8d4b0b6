package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/metrics"
	"earthborne-tracker/models"
	"earthborne-tracker/rules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const CodeImportInvalid = "import_invalid"

// Limits on import documents.
const (
	maxImportDays     = 31
	maxImportDay      = 30
	maxImportRangers  = 4
	maxImportTrades   = 200
	maxImportMissions = 200
	maxImportEvents   = 1000
	maxImportRewards  = 500
	maxWeatherLength  = 100
)

// SnapshotService converts campaigns to and from portable snapshots.
type SnapshotService struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
	Pool    *PoolService
	Log     *zap.Logger
}

func NewSnapshotService(db *gorm.DB, cat *catalog.Catalog, pool *PoolService, log *zap.Logger) *SnapshotService {
	return &SnapshotService{DB: db, Catalog: cat, Pool: pool, Log: log}
}

// Export captures the full state of a campaign. All reads share one
// transaction so concurrent writes never produce a torn snapshot.
func (s *SnapshotService) Export(campaignID string) (*Snapshot, error) {
	var (
		campaign models.Campaign
		rangers  []models.Ranger
		missions []models.Mission
		events   []models.NotableEvent
		rewards  []models.CampaignReward
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Storyline").Preload("Days", orderedDays).
			Where("id = ?", campaignID).First(&campaign).Error
		if err != nil {
			return notFoundOr(err, CodeCampaignNotFound, "Campaign not found")
		}
		if err := tx.Preload("Trades", orderedTrades).Where("campaign_id = ?", campaignID).
			Order("created_at").Find(&rangers).Error; err != nil {
			return fmt.Errorf("load rangers: %w", err)
		}
		if err := tx.Where("campaign_id = ?", campaignID).Order("name").Find(&missions).Error; err != nil {
			return fmt.Errorf("load missions: %w", err)
		}
		if err := tx.Where("campaign_id = ?", campaignID).Order("created_at").Find(&events).Error; err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		if err := tx.Where("campaign_id = ?", campaignID).Find(&rewards).Error; err != nil {
			return fmt.Errorf("load rewards: %w", err)
		}
		return nil
	}, snapshotTxOptions(s.DB)...)
	if err != nil {
		return nil, err
	}

	dayNumber := make(map[string]int, len(campaign.Days))
	out := &SnapshotCampaign{
		Name:          campaign.Name,
		Status:        campaign.Status,
		StorylineName: campaign.Storyline.Name,
		Days:          make([]SnapshotDay, 0, len(campaign.Days)),
		Rangers:       make([]SnapshotRanger, 0, len(rangers)),
		Missions:      make([]SnapshotMission, 0, len(missions)),
		Events:        make([]SnapshotEvent, 0, len(events)),
		Rewards:       make([]SnapshotReward, 0, len(rewards)),
	}
	for _, d := range campaign.Days {
		dayNumber[d.ID] = d.DayNumber
		out.Days = append(out.Days, SnapshotDay{
			DayNumber:   d.DayNumber,
			Weather:     d.Weather,
			Status:      d.Status,
			Location:    d.Location,
			PathTerrain: d.PathTerrain,
		})
	}
	dayRef := func(id *string) *int {
		if id == nil {
			return nil
		}
		n, ok := dayNumber[*id]
		if !ok {
			return nil
		}
		return &n
	}

	for _, r := range rangers {
		sr := SnapshotRanger{
			Name:                    r.Name,
			AspectCardName:          r.AspectCardName,
			AWA:                     r.AWA,
			FIT:                     r.FIT,
			FOC:                     r.FOC,
			SPI:                     r.SPI,
			BackgroundSet:           r.BackgroundSet,
			SpecialtySet:            r.SpecialtySet,
			PersonalityCardNames:    s.names(r.PersonalityCardIDs),
			BackgroundCardNames:     s.names(r.BackgroundCardIDs),
			SpecialtyCardNames:      s.names(r.SpecialtyCardIDs),
			RoleCardName:            s.Catalog.Name(r.RoleCardID),
			OutsideInterestCardName: s.Catalog.Name(r.OutsideInterestCardID),
			Trades:                  make([]SnapshotTrade, 0, len(r.Trades)),
		}
		for _, t := range r.Trades {
			sr.Trades = append(sr.Trades, SnapshotTrade{
				DayNumber:        dayNumber[t.DayID],
				OriginalCardName: s.Catalog.Name(t.OriginalCardID),
				RewardCardName:   s.Catalog.Name(t.RewardCardID),
				Reverted:         t.Reverted,
			})
		}
		out.Rangers = append(out.Rangers, sr)
	}

	for _, m := range missions {
		out.Missions = append(out.Missions, SnapshotMission{
			Name:               m.Name,
			MaxProgress:        m.MaxProgress,
			Progress:           m.Progress,
			DayStartedNumber:   dayRef(m.DayStartedID),
			DayCompletedNumber: dayRef(m.DayCompletedID),
		})
	}
	for _, e := range events {
		out.Events = append(out.Events, SnapshotEvent{Text: e.Text, DayNumber: dayNumber[e.DayID]})
	}
	for _, rw := range rewards {
		if rw.CardID != nil {
			out.Rewards = append(out.Rewards, SnapshotReward{
				CardName:    s.Catalog.Name(*rw.CardID),
				Quantity:    rw.Quantity,
				LibraryCard: true,
			})
		} else if rw.CardName != nil {
			out.Rewards = append(out.Rewards, SnapshotReward{CardName: *rw.CardName, Quantity: rw.Quantity})
		}
	}
	sort.SliceStable(out.Rewards, func(i, j int) bool { return out.Rewards[i].CardName < out.Rewards[j].CardName })

	return &Snapshot{Version: SnapshotVersion, ExportedAt: time.Now().UTC(), Campaign: out}, nil
}

func (s *SnapshotService) names(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Catalog.Name(id))
	}
	return out
}

// problems accumulates everything wrong with an import document so the
// caller sees all of it at once.
type problems struct {
	list []string
}

func (p *problems) addf(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) empty() bool { return len(p.list) == 0 }

func (p *problems) err() error {
	msg := fmt.Sprintf("Invalid import file: %s", strings.Join(p.list, "; "))
	return apperr.Validation(CodeImportInvalid, "%s", msg).WithDetails(p.list)
}

func checkLen(p *problems, field, value string, max int) {
	switch {
	case strings.TrimSpace(value) == "":
		p.addf("%s must not be empty", field)
	case len(value) > max:
		p.addf("%s must be at most %d characters", field, max)
	}
}

// Import recreates a campaign from a snapshot. Every problem in the document
// (shape, unknown storyline, unknown card names, dangling day numbers,
// rejected ranger builds) is collected before anything is written; the
// campaign is then created in a single transaction.
func (s *SnapshotService) Import(doc *Snapshot, ownerID *string) (*models.Campaign, error) {
	var p problems
	if doc == nil || doc.Campaign == nil {
		p.addf("missing 'version' or 'campaign'")
		return nil, p.err()
	}
	if doc.Version != SnapshotVersion {
		p.addf("version must be %d", SnapshotVersion)
	}
	c := doc.Campaign

	checkLen(&p, "campaign name", c.Name, maxNameLength)
	if c.Status == "" {
		c.Status = models.CampaignStatusActive
	}
	if !c.Status.Valid() {
		p.addf("campaign status %q must be 'active', 'completed', or 'archived'", c.Status)
	}

	var storyline models.Storyline
	res := s.DB.Where("name = ?", c.StorylineName).Limit(1).Find(&storyline)
	if res.Error != nil {
		return nil, fmt.Errorf("load storyline: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		p.addf("Storyline '%s' not found on this server", c.StorylineName)
	}

	days := s.checkDays(&p, c.Days)
	s.checkRangers(&p, c.Rangers, days, storyline)
	s.checkMissions(&p, c.Missions, days)
	s.checkEvents(&p, c.Events, days)
	s.checkRewards(&p, c.Rewards)
	if unknown := s.unknownCards(c); len(unknown) > 0 {
		p.addf("Unknown card names: %s", strings.Join(unknown, ", "))
	}
	if !p.empty() {
		return nil, p.err()
	}

	// Builds only make sense once every name resolves.
	builds := make([]rules.Build, len(c.Rangers))
	claimed := rules.ClaimedCards{}
	for i, r := range c.Rangers {
		builds[i] = s.resolveBuild(r)
		if err := rules.ValidateBuild(builds[i], s.Catalog, claimed); err != nil {
			p.addf("ranger '%s': %s", r.Name, err.Error())
			continue
		}
		claimed.Claim(builds[i])
	}
	if !p.empty() {
		return nil, p.err()
	}

	campaignID := uuid.NewString()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.write(tx, campaignID, ownerID, storyline.ID, c, builds)
	})
	if err != nil {
		return nil, err
	}

	metrics.CampaignsImported.Inc()
	s.Log.Info("campaign imported",
		zap.String("campaign_id", campaignID),
		zap.String("name", c.Name),
		zap.Int("rangers", len(c.Rangers)))

	var campaign models.Campaign
	err = s.DB.Preload("Storyline").Preload("Days", orderedDays).Where("id = ?", campaignID).First(&campaign).Error
	if err != nil {
		return nil, fmt.Errorf("reload imported campaign: %w", err)
	}
	campaign.CurrentDay = campaign.ActiveDay()
	return &campaign, nil
}

// checkDays validates the day list and returns the set of day numbers.
func (s *SnapshotService) checkDays(p *problems, days []SnapshotDay) map[int]bool {
	numbers := make(map[int]bool, len(days))
	if len(days) > maxImportDays {
		p.addf("at most %d days allowed, got %d", maxImportDays, len(days))
	}
	active := 0
	for i := range days {
		d := &days[i]
		if d.DayNumber < 1 || d.DayNumber > maxImportDay {
			p.addf("day_number %d must be between 1 and %d", d.DayNumber, maxImportDay)
		}
		if numbers[d.DayNumber] {
			p.addf("day %d appears more than once", d.DayNumber)
		}
		numbers[d.DayNumber] = true
		checkLen(p, fmt.Sprintf("day %d weather", d.DayNumber), d.Weather, maxWeatherLength)
		if d.Status == "" {
			d.Status = models.DayStatusUpcoming
		}
		if !d.Status.Valid() {
			p.addf("day %d status %q must be 'upcoming', 'active', or 'completed'", d.DayNumber, d.Status)
		}
		if d.Status == models.DayStatusActive {
			active++
		}
		if d.Location != nil && len(*d.Location) > maxNameLength {
			p.addf("day %d location must be at most %d characters", d.DayNumber, maxNameLength)
		}
		if d.PathTerrain != nil && len(*d.PathTerrain) > maxNameLength {
			p.addf("day %d path_terrain must be at most %d characters", d.DayNumber, maxNameLength)
		}
	}
	if active > 1 {
		p.addf("at most one day may be active, got %d", active)
	}
	return numbers
}

func (s *SnapshotService) checkRangers(p *problems, rangers []SnapshotRanger, days map[int]bool, storyline models.Storyline) {
	limit := maxImportRangers
	if storyline.ID != "" && storyline.MaxRangers < limit {
		limit = storyline.MaxRangers
	}
	if len(rangers) > limit {
		p.addf("at most %d rangers allowed, got %d", limit, len(rangers))
	}
	for _, r := range rangers {
		label := fmt.Sprintf("ranger '%s'", r.Name)
		checkLen(p, "ranger name", r.Name, maxNameLength)
		checkLen(p, label+" aspect_card_name", r.AspectCardName, maxNameLength)
		checkLen(p, label+" role_card_name", r.RoleCardName, maxNameLength)
		checkLen(p, label+" outside_interest_card_name", r.OutsideInterestCardName, maxNameLength)
		lists := []struct {
			field string
			names []string
		}{
			{"personality_card_names", r.PersonalityCardNames},
			{"background_card_names", r.BackgroundCardNames},
			{"specialty_card_names", r.SpecialtyCardNames},
		}
		for _, l := range lists {
			for i, name := range l.names {
				if strings.TrimSpace(name) == "" {
					p.addf("%s %s entry %d must not be empty", label, l.field, i+1)
				}
			}
		}
		stats := []struct {
			name  string
			value int
		}{{"awa", r.AWA}, {"fit", r.FIT}, {"foc", r.FOC}, {"spi", r.SPI}}
		for _, st := range stats {
			if st.value < 0 || st.value > maxStat {
				p.addf("%s %s must be between 0 and %d", label, st.name, maxStat)
			}
		}
		if len(r.Trades) > maxImportTrades {
			p.addf("%s has more than %d trades", label, maxImportTrades)
		}
		for i, t := range r.Trades {
			if !days[t.DayNumber] {
				p.addf("%s trade references unknown day %d", label, t.DayNumber)
			}
			if strings.TrimSpace(t.OriginalCardName) == "" || strings.TrimSpace(t.RewardCardName) == "" {
				p.addf("%s trade %d needs both card names", label, i+1)
			}
		}
	}
}

func (s *SnapshotService) checkMissions(p *problems, missions []SnapshotMission, days map[int]bool) {
	if len(missions) > maxImportMissions {
		p.addf("at most %d missions allowed, got %d", maxImportMissions, len(missions))
	}
	for _, m := range missions {
		checkLen(p, "mission name", m.Name, maxNameLength)
		if m.MaxProgress < 0 || m.MaxProgress > models.MaxMissionProgress {
			p.addf("mission '%s' max_progress must be between 0 and %d", m.Name, models.MaxMissionProgress)
		} else if m.Progress < 0 || m.Progress > m.MaxProgress {
			p.addf("mission '%s' progress must be between 0 and %d", m.Name, m.MaxProgress)
		}
		if m.DayStartedNumber != nil && !days[*m.DayStartedNumber] {
			p.addf("mission '%s' references unknown day %d", m.Name, *m.DayStartedNumber)
		}
		if m.DayCompletedNumber != nil && !days[*m.DayCompletedNumber] {
			p.addf("mission '%s' references unknown day %d", m.Name, *m.DayCompletedNumber)
		}
	}
}

func (s *SnapshotService) checkEvents(p *problems, events []SnapshotEvent, days map[int]bool) {
	if len(events) > maxImportEvents {
		p.addf("at most %d events allowed, got %d", maxImportEvents, len(events))
	}
	for i, e := range events {
		checkLen(p, fmt.Sprintf("event %d text", i+1), e.Text, maxEventText)
		if !days[e.DayNumber] {
			p.addf("event %d references unknown day %d", i+1, e.DayNumber)
		}
	}
}

func (s *SnapshotService) checkRewards(p *problems, rewards []SnapshotReward) {
	if len(rewards) > maxImportRewards {
		p.addf("at most %d rewards allowed, got %d", maxImportRewards, len(rewards))
	}
	for _, rw := range rewards {
		checkLen(p, "reward card_name", rw.CardName, maxNameLength)
		if rw.Quantity < 1 || rw.Quantity > maxRewardQuantity {
			p.addf("reward '%s' quantity must be between 1 and %d", rw.CardName, maxRewardQuantity)
		}
	}
}

// unknownCards lists, sorted and deduplicated, every card name the document
// references that the catalog does not know. Free-form rewards are exempt, and
// blank names are reported by the field checks instead.
func (s *SnapshotService) unknownCards(c *SnapshotCampaign) []string {
	unknown := map[string]bool{}
	check := func(name string) {
		if strings.TrimSpace(name) == "" {
			return
		}
		if _, ok := s.Catalog.ByName(name); !ok {
			unknown[name] = true
		}
	}
	for _, r := range c.Rangers {
		for _, list := range [][]string{r.PersonalityCardNames, r.BackgroundCardNames, r.SpecialtyCardNames} {
			for _, name := range list {
				check(name)
			}
		}
		check(r.RoleCardName)
		check(r.OutsideInterestCardName)
		for _, t := range r.Trades {
			check(t.OriginalCardName)
			check(t.RewardCardName)
		}
	}
	for _, rw := range c.Rewards {
		if rw.LibraryCard {
			check(rw.CardName)
		}
	}

	out := make([]string, 0, len(unknown))
	for name := range unknown {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *SnapshotService) idOf(name string) string {
	card, _ := s.Catalog.ByName(name)
	return card.ID
}

func (s *SnapshotService) idsOf(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, s.idOf(n))
	}
	return out
}

func (s *SnapshotService) resolveBuild(r SnapshotRanger) rules.Build {
	return rules.Build{
		PersonalityCardIDs:    s.idsOf(r.PersonalityCardNames),
		BackgroundSet:         r.BackgroundSet,
		BackgroundCardIDs:     s.idsOf(r.BackgroundCardNames),
		SpecialtySet:          r.SpecialtySet,
		SpecialtyCardIDs:      s.idsOf(r.SpecialtyCardNames),
		RoleCardID:            s.idOf(r.RoleCardName),
		OutsideInterestCardID: s.idOf(r.OutsideInterestCardName),
	}
}

func (s *SnapshotService) write(tx *gorm.DB, campaignID string, ownerID *string, storylineID string,
	c *SnapshotCampaign, builds []rules.Build) error {
	campaign := models.Campaign{
		ID:          campaignID,
		Name:        strings.TrimSpace(c.Name),
		StorylineID: storylineID,
		OwnerID:     ownerID,
		Status:      c.Status,
	}
	if err := tx.Omit("Storyline", "Days").Create(&campaign).Error; err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	dayID := make(map[int]string, len(c.Days))
	if len(c.Days) > 0 {
		days := make([]models.CampaignDay, 0, len(c.Days))
		for _, d := range c.Days {
			id := uuid.NewString()
			dayID[d.DayNumber] = id
			days = append(days, models.CampaignDay{
				ID:          id,
				CampaignID:  campaignID,
				DayNumber:   d.DayNumber,
				Weather:     d.Weather,
				Status:      d.Status,
				Location:    d.Location,
				PathTerrain: d.PathTerrain,
			})
		}
		if err := tx.Create(&days).Error; err != nil {
			return fmt.Errorf("create days: %w", err)
		}
	}
	dayRef := func(n *int) *string {
		if n == nil {
			return nil
		}
		id := dayID[*n]
		return &id
	}

	for i, r := range c.Rangers {
		ranger := newRanger(campaignID, RangerCreate{
			Name:           r.Name,
			AspectCardName: r.AspectCardName,
			AWA:            r.AWA,
			FIT:            r.FIT,
			FOC:            r.FOC,
			SPI:            r.SPI,
			Build:          builds[i],
		})
		if err := tx.Omit("Trades").Create(&ranger).Error; err != nil {
			return fmt.Errorf("create ranger %q: %w", r.Name, err)
		}
		for _, t := range r.Trades {
			trade := models.RangerTrade{
				ID:             uuid.NewString(),
				RangerID:       ranger.ID,
				DayID:          dayID[t.DayNumber],
				OriginalCardID: s.idOf(t.OriginalCardName),
				RewardCardID:   s.idOf(t.RewardCardName),
				Reverted:       t.Reverted,
			}
			if err := tx.Create(&trade).Error; err != nil {
				return fmt.Errorf("create trade: %w", err)
			}
		}
	}

	for _, m := range c.Missions {
		mission := models.Mission{
			ID:             uuid.NewString(),
			CampaignID:     campaignID,
			Name:           strings.TrimSpace(m.Name),
			MaxProgress:    m.MaxProgress,
			Progress:       m.Progress,
			DayStartedID:   dayRef(m.DayStartedNumber),
			DayCompletedID: dayRef(m.DayCompletedNumber),
		}
		if err := tx.Create(&mission).Error; err != nil {
			return fmt.Errorf("create mission: %w", err)
		}
	}

	for _, e := range c.Events {
		event := models.NotableEvent{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			DayID:      dayID[e.DayNumber],
			Text:       strings.TrimSpace(e.Text),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("create event: %w", err)
		}
	}

	for _, rw := range c.Rewards {
		if rw.LibraryCard {
			if err := s.Pool.Adjust(tx, campaignID, s.idOf(rw.CardName), rw.Quantity); err != nil {
				return err
			}
			continue
		}
		var entry models.CampaignReward
		if err := s.Pool.addNamed(tx, campaignID, strings.TrimSpace(rw.CardName), rw.Quantity, &entry); err != nil {
			return fmt.Errorf("create reward: %w", err)
		}
	}
	return nil
}
