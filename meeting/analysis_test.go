package meeting_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
)

var _ = Describe("SortedScores", func() {
	It("orders by score then speaker", func() {
		got := meeting.SortedScores(map[string]float64{"C": 1, "A": 1, "B": 4.5})
		Expect(got).To(Equal([]meeting.SpeakerScore{
			{Speaker: "B", Score: 4.5},
			{Speaker: "A", Score: 1},
			{Speaker: "C", Score: 1},
		}))
	})

	It("returns an empty list for no speakers", func() {
		got := meeting.SortedScores(nil)
		Expect(got).NotTo(BeNil())
		Expect(got).To(BeEmpty())
	})
})

var _ = Describe("Analysis", func() {
	It("takes the report and score", func() {
		r := &clarity.Report{
			TotalJargonCount:      6,
			OverallClaritySummary: "Some buzzwords.",
			IdentifiedJargon: []clarity.JargonOccurrence{
				{Term: "synergy", Speaker: "A", Frequency: 5, PenaltyWeight: 1},
			},
		}
		res, err := clarity.NewScorer(5).Score(r, 100)
		Expect(err).NotTo(HaveOccurred())

		var a meeting.Analysis
		a.Fill(r, res)
		Expect(a.ClarityIndex).To(Equal(75))
		Expect(a.TotalJargonCount).To(Equal(6))
		Expect(a.OverallSummary).To(Equal("Some buzzwords."))
		Expect(a.SpeakerScores).To(Equal([]meeting.SpeakerScore{{Speaker: "A", Score: 5}}))
		Expect(a.TopJargonTerms).To(HaveLen(1))
		Expect(a.IdentifiedJargon).To(HaveLen(1))
	})

	It("never leaves the jargon list nil", func() {
		r := &clarity.Report{}
		res, err := clarity.NewScorer(5).Score(r, 0)
		Expect(err).NotTo(HaveOccurred())
		var a meeting.Analysis
		a.Fill(r, res)
		Expect(a.IdentifiedJargon).NotTo(BeNil())
		Expect(a.ClarityIndex).To(Equal(100))
	})

	It("summarizes for history", func() {
		at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		a := meeting.Analysis{
			ID: "7", Owner: "alice", Label: "Retro", CreatedAt: at,
			DurationSec: 1800, ClarityIndex: 66, TotalJargonCount: 9, TotalWords: 4000,
		}
		Expect(a.Summary()).To(Equal(meeting.Summary{
			ID: "7", CreatedAt: at, Label: "Retro", ClarityIndex: 66, TotalJargonCount: 9, DurationSec: 1800,
		}))
	})
})

var _ = Describe("IDs", func() {
	It("hands out unique increasing ids", func() {
		ids, err := meeting.NewIDs(3)
		Expect(err).NotTo(HaveOccurred())
		seen := map[string]bool{}
		for i := 0; i < 1000; i++ {
			id := ids.Next()
			Expect(seen).NotTo(HaveKey(id))
			seen[id] = true
		}
	})

	It("rejects an out of range node", func() {
		_, err := meeting.NewIDs(5000)
		Expect(err).To(HaveOccurred())
	})
})
