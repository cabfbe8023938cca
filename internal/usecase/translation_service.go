package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

const protectedTermsTTL = 10 * time.Minute

// TranslationService fills missing locales on generated artifacts. Team names
// and glossary terms are masked before the text leaves the process and
// restored afterwards, so the translator cannot mangle proper nouns.
type TranslationService struct {
	analyses   content.MatchAnalysisRepository
	reports    content.DailyReportRepository
	teams      team.Repository
	translator Translator
	locales    []string
	glossary   []string
	logger     *logging.Logger

	mu            sync.Mutex
	terms         []string
	termsLoadedAt time.Time
}

func NewTranslationService(
	analyses content.MatchAnalysisRepository,
	reports content.DailyReportRepository,
	teams team.Repository,
	translator Translator,
	targetLocales []string,
	glossary []string,
	logger *logging.Logger,
) *TranslationService {
	if logger == nil {
		logger = logging.Default()
	}

	locales := make([]string, 0, len(targetLocales))
	for _, loc := range targetLocales {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc == "" || loc == content.CanonicalLocale {
			continue
		}
		locales = append(locales, loc)
	}

	return &TranslationService{
		analyses:   analyses,
		reports:    reports,
		teams:      teams,
		translator: translator,
		locales:    locales,
		glossary:   glossary,
		logger:     logger,
	}
}

func (s *TranslationService) TargetLocales() []string {
	return append([]string(nil), s.locales...)
}

// TranslateBacklog sweeps artifacts that are missing at least one target
// locale and fills the gaps. Per-locale failures leave the locale absent so
// the next sweep retries it.
func (s *TranslationService) TranslateBacklog(ctx context.Context, limit int) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "TranslationService.TranslateBacklog")
	defer span.End()

	counts := SyncCounts{}
	if len(s.locales) == 0 {
		return counts, nil
	}
	if limit <= 0 {
		limit = 50
	}

	analyses, err := s.analyses.ListMissingLocales(ctx, s.locales, limit)
	if err != nil {
		return counts, fmt.Errorf("list analyses missing locales: %w", err)
	}
	for _, artifact := range analyses {
		for _, item := range s.FillMatchAnalysis(ctx, &artifact) {
			counts.record(item)
		}
	}

	reports, err := s.reports.ListMissingLocales(ctx, s.locales, limit)
	if err != nil {
		return counts, fmt.Errorf("list reports missing locales: %w", err)
	}
	for _, report := range reports {
		for _, item := range s.FillDailyReport(ctx, &report) {
			counts.record(item)
		}
	}

	return counts, nil
}

// FillMatchAnalysis translates the canonical locale into every missing target
// on one artifact. Locales already present are never re-translated.
func (s *TranslationService) FillMatchAnalysis(ctx context.Context, artifact *content.MatchAnalysis) []ItemResult {
	base, ok := artifact.Locales[content.CanonicalLocale]
	if !ok || base.Empty() {
		return []ItemResult{{
			Key:     fmt.Sprintf("analysis:%d", artifact.MatchID),
			Status:  ItemSkipped,
			Message: "canonical locale is missing",
		}}
	}

	var items []ItemResult
	for _, locale := range content.MissingLocales(artifact.Locales, s.locales) {
		key := fmt.Sprintf("analysis:%d:%s", artifact.MatchID, locale)

		translated, err := s.translateContent(ctx, base, locale)
		if err != nil {
			s.logger.WarnContext(ctx, "analysis translation failed", "match_id", artifact.MatchID, "locale", locale, "error", err)
			items = append(items, ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		if err := s.analyses.SetLocale(ctx, artifact.MatchID, locale, translated); err != nil {
			items = append(items, ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		items = append(items, ItemResult{Key: key, Status: ItemAdded})
	}
	return items
}

func (s *TranslationService) FillDailyReport(ctx context.Context, report *content.DailyReport) []ItemResult {
	base, ok := report.Locales[content.CanonicalLocale]
	if !ok || base.Empty() {
		return []ItemResult{{
			Key:     fmt.Sprintf("report:%s:%s", report.Sport, report.ReportDate),
			Status:  ItemSkipped,
			Message: "canonical locale is missing",
		}}
	}

	var items []ItemResult
	for _, locale := range content.MissingLocales(report.Locales, s.locales) {
		key := fmt.Sprintf("report:%s:%s:%s", report.Sport, report.ReportDate, locale)

		translated, err := s.translateContent(ctx, base, locale)
		if err != nil {
			s.logger.WarnContext(ctx, "report translation failed", "report_date", report.ReportDate, "locale", locale, "error", err)
			items = append(items, ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		if err := s.reports.SetLocale(ctx, report.ID, locale, translated); err != nil {
			items = append(items, ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		items = append(items, ItemResult{Key: key, Status: ItemAdded})
	}
	return items
}

// translateContent carries one payload into one locale, field by field. Any
// field failure aborts the whole locale so partial payloads never persist.
func (s *TranslationService) translateContent(ctx context.Context, base content.LocaleContent, locale string) (content.LocaleContent, error) {
	mask, err := s.buildMask(ctx)
	if err != nil {
		return content.LocaleContent{}, err
	}

	out := content.LocaleContent{}
	fields := []struct {
		src string
		dst *string
	}{
		{base.Summary, &out.Summary},
		{base.RecentFlowAnalysis, &out.RecentFlowAnalysis},
		{base.SeasonTrends, &out.SeasonTrends},
		{base.TacticalAnalysis, &out.TacticalAnalysis},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.src) == "" {
			continue
		}
		translated, err := s.translateText(ctx, mask, field.src, locale)
		if err != nil {
			return content.LocaleContent{}, err
		}
		*field.dst = translated
	}

	for _, point := range base.KeyPoints {
		if strings.TrimSpace(point) == "" {
			continue
		}
		translated, err := s.translateText(ctx, mask, point, locale)
		if err != nil {
			return content.LocaleContent{}, err
		}
		out.KeyPoints = append(out.KeyPoints, translated)
	}

	return out, nil
}

func (s *TranslationService) translateText(ctx context.Context, mask *entityMask, text, locale string) (string, error) {
	masked := mask.Apply(text)
	translated, err := s.translator.Translate(ctx, masked, content.CanonicalLocale, locale)
	if err != nil {
		return "", err
	}
	return mask.Restore(translated), nil
}

// buildMask collects every known team name plus the glossary. Glossary terms
// ride the same mask as team names, so mistranslation-prone vocabulary comes
// back verbatim instead of needing correction afterwards. The list is cached
// briefly so backlog sweeps do not reload it per field.
func (s *TranslationService) buildMask(ctx context.Context) (*entityMask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terms == nil || time.Since(s.termsLoadedAt) > protectedTermsTTL {
		terms := make([]string, 0, 64)
		for _, sp := range []sport.Sport{sport.Football, sport.Basketball} {
			teams, err := s.teams.ListBySport(ctx, sp)
			if err != nil {
				return nil, fmt.Errorf("list teams for masking: %w", err)
			}
			for _, t := range teams {
				if strings.TrimSpace(t.Name) != "" {
					terms = append(terms, t.Name)
				}
			}
		}
		terms = append(terms, s.glossary...)
		s.terms = terms
		s.termsLoadedAt = time.Now()
	}

	return newEntityMask(s.terms), nil
}

// entityMask swaps protected terms for opaque tokens before translation and
// swaps them back afterwards. Longer terms are replaced first so "Manchester
// United" wins over "Manchester".
type entityMask struct {
	apply   *strings.Replacer
	restore *strings.Replacer
}

func newEntityMask(terms []string) *entityMask {
	unique := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if len(unique[i]) != len(unique[j]) {
			return len(unique[i]) > len(unique[j])
		}
		return unique[i] < unique[j]
	})

	forward := make([]string, 0, len(unique)*2)
	backward := make([]string, 0, len(unique)*2)
	for i, term := range unique {
		token := fmt.Sprintf("⟦%d⟧", i)
		forward = append(forward, term, token)
		backward = append(backward, token, term)
	}

	return &entityMask{
		apply:   strings.NewReplacer(forward...),
		restore: strings.NewReplacer(backward...),
	}
}

func (m *entityMask) Apply(text string) string {
	if m == nil || m.apply == nil {
		return text
	}
	return m.apply.Replace(text)
}

func (m *entityMask) Restore(text string) string {
	if m == nil || m.restore == nil {
		return text
	}
	return m.restore.Replace(text)
}
