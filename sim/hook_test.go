package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	positions []*HookPos
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("HookableBase", func() {
	var (
		hookable *HookableBase
		pos      *HookPos
	)

	BeforeEach(func() {
		hookable = &HookableBase{}
		pos = &HookPos{Name: "Test"}
	})

	It("should invoke all registered hooks", func() {
		h1 := &countingHook{}
		h2 := &countingHook{}
		hookable.AcceptHook(h1)
		hookable.AcceptHook(h2)

		hookable.InvokeHook(HookCtx{Domain: hookable, Pos: pos})

		Expect(hookable.NumHooks()).To(Equal(2))
		Expect(h1.positions).To(ConsistOf(pos))
		Expect(h2.positions).To(ConsistOf(pos))
	})

	It("should panic on duplicated hook", func() {
		h := &countingHook{}
		hookable.AcceptHook(h)

		Expect(func() { hookable.AcceptHook(h) }).To(Panic())
	})
})

var _ = Describe("NameMustBeValid", func() {
	It("should accept hierarchical names", func() {
		Expect(func() { NameMustBeValid("Core[0].MMU") }).NotTo(Panic())
	})

	It("should reject empty tokens", func() {
		Expect(func() { NameMustBeValid("Core..MMU") }).To(Panic())
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should reject unmatched brackets", func() {
		Expect(func() { NameMustBeValid("Core[0.MMU") }).To(Panic())
		Expect(func() { NameMustBeValid("Core]0[") }).To(Panic())
	})
})

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := &sequentialIDGenerator{}

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique parallel ids", func() {
		g := parallelIDGenerator{}

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})
})
