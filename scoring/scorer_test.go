package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephealth/dha-backend/registry"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

type stubMeta struct {
	doc       *registry.Packument
	err       error
	downloads int64
}

func (s *stubMeta) Fetch(context.Context, string) (*registry.Packument, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *stubMeta) WeeklyDownloads(context.Context, string, *registry.Packument) int64 {
	return s.downloads
}

type stubAdvisories struct {
	ids []string
	err error
}

func (s *stubAdvisories) AdvisoryIDs(context.Context, string) ([]string, error) {
	return s.ids, s.err
}

func testPackument(license string, released time.Time, maintainers int) *registry.Packument {
	doc := &registry.Packument{
		Name:     "pkg",
		DistTags: map[string]string{"latest": "1.0.0"},
		Versions: map[string]registry.VersionInfo{
			"1.0.0": {Version: "1.0.0", License: registry.License(license)},
		},
	}
	if !released.IsZero() {
		doc.Time = map[string]time.Time{"modified": released}
	}
	for i := 0; i < maintainers; i++ {
		doc.Maintainers = append(doc.Maintainers, registry.Maintainer{Name: fmt.Sprintf("m%d", i)})
	}
	return doc
}

func TestLicenseTiers(t *testing.T) {
	// Release 200 days old and zero downloads keep the other tiers neutral.
	released := testNow.AddDate(0, 0, -200)

	cases := []struct {
		name    string
		license string
		want    float64
	}{
		{"mit", "MIT", 7.0},
		{"isc", "ISC", 7.0},
		{"bsd3", "BSD-3-Clause", 7.0},
		{"apache", "Apache-2.0", 6.5},
		{"missing", "", 4.0},
		{"gpl", "GPL-3.0", 5.0},
		{"bsd2", "BSD-2-Clause", 5.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scorer := NewScorer(&stubMeta{doc: testPackument(tc.license, released, 1)}, nil, fixedClock())
			record, err := scorer.Score(context.Background(), "pkg", "1.0.0")
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.HealthScore)
		})
	}
}

func TestRecencyTierBoundaries(t *testing.T) {
	// GPL keeps the license tier at zero so the score isolates recency.
	cases := []struct {
		name string
		days int
		want float64
	}{
		{"29 days", 29, 7.0},
		{"30 days", 30, 6.0},
		{"179 days", 179, 6.0},
		{"180 days", 180, 5.0},
		{"365 days", 365, 5.0},
		{"366 days", 366, 4.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			released := testNow.AddDate(0, 0, -tc.days)
			scorer := NewScorer(&stubMeta{doc: testPackument("GPL-3.0", released, 1)}, nil, fixedClock())
			record, err := scorer.Score(context.Background(), "pkg", "1.0.0")
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.HealthScore)
		})
	}
}

func TestRecencyFutureTimestamp(t *testing.T) {
	// Registry clock skew puts the release in the future; counts as zero days.
	released := testNow.AddDate(0, 0, 3)
	scorer := NewScorer(&stubMeta{doc: testPackument("GPL-3.0", released, 1)}, nil, fixedClock())
	record, err := scorer.Score(context.Background(), "pkg", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 7.0, record.HealthScore)
}

func TestRecencyUnknown(t *testing.T) {
	// No release timestamp at all: no recency adjustment in either direction.
	scorer := NewScorer(&stubMeta{doc: testPackument("GPL-3.0", time.Time{}, 1)}, nil, fixedClock())
	record, err := scorer.Score(context.Background(), "pkg", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 5.0, record.HealthScore)
	assert.Nil(t, record.LastRelease)
}

func TestPopularityTierBoundaries(t *testing.T) {
	released := testNow.AddDate(0, 0, -200)

	cases := []struct {
		name      string
		downloads int64
		want      float64
	}{
		{"just below mid tier", 99999, 5.0},
		{"mid tier lower edge", 100000, 5.5},
		{"mid tier upper edge", 1000000, 5.5},
		{"top tier", 1000001, 6.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := &stubMeta{doc: testPackument("GPL-3.0", released, 1), downloads: tc.downloads}
			scorer := NewScorer(meta, nil, fixedClock())
			record, err := scorer.Score(context.Background(), "pkg", "1.0.0")
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.HealthScore)
			assert.Equal(t, tc.downloads, record.Downloads)
		})
	}
}

func TestScoreStaysInBounds(t *testing.T) {
	// Worst realistic case: ancient release, no license, nobody downloads it.
	released := testNow.AddDate(-8, 0, 0)
	scorer := NewScorer(&stubMeta{doc: testPackument("", released, 0)}, nil, fixedClock())
	record, err := scorer.Score(context.Background(), "abandoned", "0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, record.HealthScore)
	assert.GreaterOrEqual(t, record.HealthScore, 0.0)
	assert.LessOrEqual(t, record.HealthScore, 10.0)
	assert.Equal(t, LicenseUnknown, record.License)
}

func TestScoreExpressEndToEnd(t *testing.T) {
	released := testNow.AddDate(0, 0, -10)
	doc := &registry.Packument{
		Name:     "express",
		DistTags: map[string]string{"latest": "4.18.2"},
		Versions: map[string]registry.VersionInfo{
			"4.18.2": {Version: "4.18.2", License: "MIT"},
		},
		Time:        map[string]time.Time{"modified": released},
		Maintainers: []registry.Maintainer{{Name: "dougwilson"}},
		Repository:  &registry.Repository{Type: "git", URL: "https://github.com/expressjs/express.git"},
	}
	meta := &stubMeta{doc: doc, downloads: 2500000}

	scorer := NewScorer(meta, nil, fixedClock())
	record, err := scorer.Score(context.Background(), "express", "4.18.2")
	require.NoError(t, err)

	assert.Equal(t, 10.0, record.HealthScore)
	assert.Equal(t, "express", record.Dependency)
	assert.Equal(t, "4.18.2", record.Version)
	assert.Equal(t, "MIT", record.License)
	assert.Equal(t, "4.18.2", record.LatestVersion)
	assert.Equal(t, int64(2500000), record.Downloads)
	assert.Equal(t, "https://github.com/expressjs/express.git", record.Repository)
	assert.Equal(t, "pkg:npm/express@4.18.2", record.Purl)

	require.NotNil(t, record.Maintainers)
	assert.Equal(t, 1, *record.Maintainers)

	require.NotNil(t, record.LastRelease)
	assert.Equal(t, "2025-06-05", *record.LastRelease)

	require.NotNil(t, record.Outdated)
	assert.False(t, *record.Outdated)

	assert.False(t, record.Degraded())
}

func TestScoreFallbackOnFetchFailure(t *testing.T) {
	meta := &stubMeta{err: errors.New("connection refused")}
	scorer := NewScorer(meta, nil, fixedClock())

	record, err := scorer.Score(context.Background(), "ghost-pkg", "^1.0.0")
	require.Error(t, err)

	assert.Equal(t, 3.0, record.HealthScore)
	assert.Equal(t, LicenseUnknown, record.License)
	assert.Nil(t, record.LastRelease)
	assert.Nil(t, record.Maintainers)
	assert.Contains(t, record.Error, "connection refused")
	assert.Equal(t, "pkg:npm/ghost-pkg@1.0.0", record.Purl)
	assert.True(t, record.Degraded())
}

func TestScoreDeterministic(t *testing.T) {
	released := testNow.AddDate(0, 0, -45)
	meta := &stubMeta{doc: testPackument("MIT", released, 3), downloads: 500000}
	scorer := NewScorer(meta, nil, fixedClock())

	first, err := scorer.Score(context.Background(), "pkg", "~1.0.0")
	require.NoError(t, err)
	second, err := scorer.Score(context.Background(), "pkg", "~1.0.0")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 8.5, first.HealthScore)
}

func TestScoreOutdatedCheck(t *testing.T) {
	released := testNow.AddDate(0, 0, -45)
	doc := &registry.Packument{
		Name:     "pkg",
		DistTags: map[string]string{"latest": "4.18.2"},
		Versions: map[string]registry.VersionInfo{
			"4.18.2": {Version: "4.18.2", License: "MIT"},
		},
		Time: map[string]time.Time{"modified": released},
	}
	scorer := NewScorer(&stubMeta{doc: doc}, nil, fixedClock())

	behind, err := scorer.Score(context.Background(), "pkg", "^3.0.0")
	require.NoError(t, err)
	require.NotNil(t, behind.Outdated)
	assert.True(t, *behind.Outdated)

	garbage, err := scorer.Score(context.Background(), "pkg", "not-a-version")
	require.NoError(t, err)
	assert.Nil(t, garbage.Outdated)
}

func TestScoreAdvisoryEnrichment(t *testing.T) {
	released := testNow.AddDate(0, 0, -45)
	meta := &stubMeta{doc: testPackument("MIT", released, 1)}

	withIDs := NewScorer(meta, &stubAdvisories{ids: []string{"GHSA-xxxx-yyyy-zzzz"}}, fixedClock())
	record, err := withIDs.Score(context.Background(), "pkg", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"GHSA-xxxx-yyyy-zzzz"}, record.Advisories)

	// A failing lookup attaches nothing and never fails the score.
	failing := NewScorer(meta, &stubAdvisories{err: errors.New("osv down")}, fixedClock())
	record, err = failing.Score(context.Background(), "pkg", "1.0.0")
	require.NoError(t, err)
	assert.Nil(t, record.Advisories)

	// Disabled enrichment attaches nothing either.
	disabled := NewScorer(meta, nil, fixedClock())
	record, err = disabled.Score(context.Background(), "pkg", "1.0.0")
	require.NoError(t, err)
	assert.Nil(t, record.Advisories)
}
