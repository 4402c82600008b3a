package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/store"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

func analysis(id, owner string, at time.Time, idx int) *meeting.Analysis {
	return &meeting.Analysis{
		ID:               id,
		Owner:            owner,
		Label:            "standup " + id,
		CreatedAt:        at,
		DurationSec:      61.5,
		TotalWords:       120,
		TotalJargonCount: 3,
		OverallSummary:   "ok",
		ClarityIndex:     idx,
		SpeakerScores:    []meeting.SpeakerScore{{Speaker: "A", Score: 2}},
		TopJargonTerms:   []clarity.TermImpact{{Term: "synergy", Speaker: "A", Frequency: 2, PenaltyWeight: 1}},
		IdentifiedJargon: []clarity.JargonOccurrence{{Term: "synergy", Speaker: "A", Frequency: 2, PenaltyWeight: 1}},
		Transcript:       []transcript.Utterance{{Speaker: "A", Text: "synergy synergy", Start: 0, End: 1}},
	}
}

var _ = Describe("Store", func() {
	var (
		s   *store.Store
		ctx context.Context
		t0  time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		var err error
		s, err = store.Open(filepath.Join(GinkgoT().TempDir(), "db", "clarity.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
	})

	It("round-trips an analysis", func() {
		a := analysis("1", "alice", t0, 75)
		Expect(s.Save(ctx, a)).To(Succeed())

		got, err := s.Get(ctx, "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ClarityIndex).To(Equal(75))
		Expect(got.CreatedAt.Equal(t0)).To(BeTrue())
		Expect(got.Transcript).To(Equal(a.Transcript))
		Expect(got.IdentifiedJargon).To(Equal(a.IdentifiedJargon))
	})

	It("reports unknown ids", func() {
		_, err := s.Get(ctx, "404")
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("rejects an empty id", func() {
		Expect(s.Save(ctx, analysis("", "alice", t0, 50))).NotTo(Succeed())
	})

	It("lists an owner's history oldest first", func() {
		Expect(s.Save(ctx, analysis("3", "alice", t0.Add(2*time.Hour), 60))).To(Succeed())
		Expect(s.Save(ctx, analysis("1", "alice", t0, 80))).To(Succeed())
		Expect(s.Save(ctx, analysis("2", "bob", t0.Add(time.Hour), 90))).To(Succeed())
		Expect(s.Save(ctx, analysis("4", "alice", t0.Add(time.Hour+time.Nanosecond), 70))).To(Succeed())

		h, err := s.History(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(h).To(HaveLen(3))
		Expect([]string{h[0].ID, h[1].ID, h[2].ID}).To(Equal([]string{"1", "4", "3"}))
		Expect(h[0]).To(Equal(meeting.Summary{
			ID: "1", CreatedAt: t0, Label: "standup 1", ClarityIndex: 80, TotalJargonCount: 3, DurationSec: 61.5,
		}))

		n, err := s.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(4))
	})

	It("returns an empty history for unknown owners", func() {
		h, err := s.History(ctx, "nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(h).NotTo(BeNil())
		Expect(h).To(BeEmpty())
	})

	It("replaces a re-saved meeting", func() {
		Expect(s.Save(ctx, analysis("1", "alice", t0, 80))).To(Succeed())
		Expect(s.Save(ctx, analysis("1", "alice", t0, 40))).To(Succeed())
		got, err := s.Get(ctx, "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ClarityIndex).To(Equal(40))
	})

	It("surfaces open failures", func() {
		restore := store.SetOpenDB(func(string, string) (*sql.DB, error) { return nil, errors.New("disk gone") })
		defer restore()
		_, err := store.Open(filepath.Join(GinkgoT().TempDir(), "x.db"))
		Expect(err).To(MatchError(ContainSubstring("disk gone")))
	})
})
