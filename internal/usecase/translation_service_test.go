package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/infrastructure/repository/memory"
)

type stubTranslator struct {
	locales []string
	err     error
}

func (s *stubTranslator) Translate(_ context.Context, text, _, targetLocale string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	// Protected names must never reach the translator unmasked.
	if strings.Contains(text, "Arsenal") || strings.Contains(text, "Chelsea") {
		return "", errors.New("unmasked team name in payload")
	}
	s.locales = append(s.locales, targetLocale)
	return "[" + targetLocale + "] " + text, nil
}

func newTranslationFixture(t *testing.T, translator Translator) (*TranslationService, *memory.MatchAnalysisRepository, *memory.DailyReportRepository) {
	t.Helper()

	ctx := context.Background()
	teams := memory.NewTeamRepository()
	for _, name := range []string{"Arsenal", "Chelsea"} {
		if _, err := teams.Upsert(ctx, &team.Team{
			Sport:      sport.Football,
			ExternalID: "ext-" + name,
			Name:       name,
			Slug:       team.Slugify(name),
		}); err != nil {
			t.Fatalf("seed team %s: %v", name, err)
		}
	}

	analyses := memory.NewMatchAnalysisRepository()
	reports := memory.NewDailyReportRepository()
	svc := NewTranslationService(analyses, reports, teams, translator, []string{"en", "ko", "ja"}, []string{"derby"}, nil)
	return svc, analyses, reports
}

func TestTranslationService_FillMatchAnalysis_MasksAndRestoresNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	translator := &stubTranslator{}
	svc, analyses, _ := newTranslationFixture(t, translator)

	artifact := &content.MatchAnalysis{
		MatchID: 7,
		Locales: map[string]content.LocaleContent{
			"en": {Summary: "Arsenal host Chelsea in a derby clash.", KeyPoints: []string{"Arsenal unbeaten at home"}},
		},
	}
	if err := analyses.Upsert(ctx, artifact); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	counts, err := svc.TranslateBacklog(ctx, 0)
	if err != nil {
		t.Fatalf("TranslateBacklog: %v", err)
	}
	if counts.Added != 2 || counts.Errors != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	stored, err := analyses.GetByMatchID(ctx, 7)
	if err != nil || stored == nil {
		t.Fatalf("load artifact: %v", err)
	}
	ko, ok := stored.Locales["ko"]
	if !ok {
		t.Fatalf("ko locale missing: %v", stored.Locales)
	}
	if ko.Summary != "[ko] Arsenal host Chelsea in a derby clash." {
		t.Fatalf("names not restored after translation: %q", ko.Summary)
	}
	if len(ko.KeyPoints) != 1 || ko.KeyPoints[0] != "[ko] Arsenal unbeaten at home" {
		t.Fatalf("unexpected key points: %v", ko.KeyPoints)
	}
}

func TestTranslationService_NeverRetranslatesPresentLocales(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	translator := &stubTranslator{}
	svc, analyses, _ := newTranslationFixture(t, translator)

	if err := analyses.Upsert(ctx, &content.MatchAnalysis{
		MatchID: 9,
		Locales: map[string]content.LocaleContent{
			"en": {Summary: "Quiet midweek fixture."},
			"ko": {Summary: "already translated"},
		},
	}); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	counts, err := svc.TranslateBacklog(ctx, 0)
	if err != nil {
		t.Fatalf("TranslateBacklog: %v", err)
	}
	if counts.Added != 1 {
		t.Fatalf("only ja should be filled: %+v", counts)
	}
	if len(translator.locales) != 1 || translator.locales[0] != "ja" {
		t.Fatalf("unexpected translator calls: %v", translator.locales)
	}

	stored, _ := analyses.GetByMatchID(ctx, 9)
	if stored.Locales["ko"].Summary != "already translated" {
		t.Fatalf("present locale was overwritten: %q", stored.Locales["ko"].Summary)
	}
}

func TestTranslationService_MissingCanonicalIsSkipped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, analyses, _ := newTranslationFixture(t, &stubTranslator{})

	if err := analyses.Upsert(ctx, &content.MatchAnalysis{
		MatchID: 11,
		Locales: map[string]content.LocaleContent{"ko": {Summary: "orphan"}},
	}); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	counts, err := svc.TranslateBacklog(ctx, 0)
	if err != nil {
		t.Fatalf("TranslateBacklog: %v", err)
	}
	if counts.Skipped != 1 || counts.Added != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestTranslationService_FailedLocaleStaysAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	translator := &stubTranslator{err: errors.New("vendor timeout")}
	svc, analyses, _ := newTranslationFixture(t, translator)

	if err := analyses.Upsert(ctx, &content.MatchAnalysis{
		MatchID: 13,
		Locales: map[string]content.LocaleContent{"en": {Summary: "Plain fixture."}},
	}); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	counts, err := svc.TranslateBacklog(ctx, 0)
	if err != nil {
		t.Fatalf("TranslateBacklog: %v", err)
	}
	if counts.Errors != 2 {
		t.Fatalf("both locales should fail: %+v", counts)
	}

	stored, _ := analyses.GetByMatchID(ctx, 13)
	if _, ok := stored.Locales["ko"]; ok {
		t.Fatal("failed locale must stay absent for retry")
	}
}

func TestEntityMask_LongerTermsWinOverPrefixes(t *testing.T) {
	t.Parallel()

	mask := newEntityMask([]string{"Manchester", "Manchester United"})

	masked := mask.Apply("Manchester United visit Manchester rivals")
	if strings.Contains(masked, "Manchester") {
		t.Fatalf("mask left a protected term visible: %q", masked)
	}
	if got := mask.Restore(masked); got != "Manchester United visit Manchester rivals" {
		t.Fatalf("restore mismatch: %q", got)
	}
}
