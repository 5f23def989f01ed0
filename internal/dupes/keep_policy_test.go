package dupes_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joe/dupes/internal/config"
	"github.com/joe/dupes/internal/dupes"
)

var _ = Describe("Keep policies", func() {
	var group dupes.Group

	member := func(p string, size int64, age time.Duration) dupes.FileRecord {
		return dupes.FileRecord{Path: p, Size: size, ModTime: baseTime.Add(-age), Fingerprint: "f"}
	}

	resolve := func(policy config.KeepPolicy) dupes.KeepDecision {
		resolver, err := dupes.NewResolver(policy, nil)
		Expect(err).NotTo(HaveOccurred())

		decision, ok, err := resolver.Resolve(context.Background(), group)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		return decision
	}

	BeforeEach(func() {
		group = dupes.Group{Fingerprint: "f", Members: []dupes.FileRecord{
			member("/d/mid", 20, 2*time.Hour),
			member("/d/old", 10, 3*time.Hour),
			member("/d/new", 30, time.Hour),
		}}
	})

	DescribeTable("chooses one member and removes the rest",
		func(policy config.KeepPolicy, kept string) {
			decision := resolve(policy)

			Expect(decision.Kept.Path).To(Equal(kept))
			Expect(decision.Removed).To(HaveLen(len(group.Members) - 1))
			Expect(paths(decision.Removed)).NotTo(ContainElement(kept))
		},
		Entry("first", config.KeepFirst, "/d/mid"),
		Entry("newest", config.KeepNewest, "/d/new"),
		Entry("oldest", config.KeepOldest, "/d/old"),
		Entry("largest", config.KeepLargest, "/d/new"),
		Entry("smallest", config.KeepSmallest, "/d/old"),
	)

	It("keeps removed members in discovery order", func() {
		decision := resolve(config.KeepNewest)

		Expect(paths(decision.Removed)).To(Equal([]string{"/d/mid", "/d/old"}))
	})

	Describe("ties", func() {
		BeforeEach(func() {
			group = dupes.Group{Fingerprint: "f", Members: []dupes.FileRecord{
				member("/d/first", 10, time.Hour),
				member("/d/second", 10, time.Hour),
			}}
		})

		It("go to the member seen first for every policy", func() {
			for _, policy := range []config.KeepPolicy{
				config.KeepNewest, config.KeepOldest, config.KeepLargest, config.KeepSmallest, config.KeepFirst,
			} {
				Expect(resolve(policy).Kept.Path).To(Equal("/d/first"), policy.String())
			}
		})
	})

	Describe("interactive", func() {
		It("keeps the chosen index", func() {
			chooser := dupes.NewScriptedChooser(dupes.ScriptedAnswer{Index: 2})
			resolver, err := dupes.NewResolver(config.KeepInteractive, chooser)
			Expect(err).NotTo(HaveOccurred())

			decision, ok, err := resolver.Resolve(context.Background(), group)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(decision.Kept.Path).To(Equal("/d/new"))
			Expect(chooser.Asked()).To(HaveLen(1))
		})

		It("produces no decision when the group is skipped", func() {
			chooser := dupes.NewScriptedChooser(dupes.ScriptedAnswer{Skip: true})
			resolver, err := dupes.NewResolver(config.KeepInteractive, chooser)
			Expect(err).NotTo(HaveOccurred())

			_, ok, err := resolver.Resolve(context.Background(), group)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects an index outside the group", func() {
			chooser := dupes.NewScriptedChooser(dupes.ScriptedAnswer{Index: 3})
			resolver, err := dupes.NewResolver(config.KeepInteractive, chooser)
			Expect(err).NotTo(HaveOccurred())

			_, ok, err := resolver.Resolve(context.Background(), group)
			Expect(err).To(MatchError(dupes.ErrChoiceOutOfRange))
			Expect(ok).To(BeFalse())
		})

		It("needs a chooser", func() {
			_, err := dupes.NewResolver(config.KeepInteractive, nil)
			Expect(err).To(MatchError(dupes.ErrNoChooser))
		})

		It("reports a script that ran out of answers", func() {
			resolver, err := dupes.NewResolver(config.KeepInteractive, dupes.NewScriptedChooser())
			Expect(err).NotTo(HaveOccurred())

			_, _, err = resolver.Resolve(context.Background(), group)
			Expect(err).To(MatchError(dupes.ErrNoMoreAnswers))
		})
	})

	It("rejects an unknown policy", func() {
		_, err := dupes.NewResolver(config.KeepPolicy(99), nil)
		Expect(err).To(MatchError(config.ErrInvalidValue))
	})
})

func TestKeepPolicies(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Keep Policy Suite")
}
