package cmd

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/swap"
	"github.com/spf13/pflag"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

var _ = Describe("Options", func() {
	It("should default to the reference machine", func() {
		o, err := optionsFromEnv(mapLookup(nil))

		Expect(err).NotTo(HaveOccurred())
		Expect(o).To(Equal(defaultOptions()))

		cfg, err := o.config()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(vm.DefaultConfig()))
	})

	It("should read the environment", func() {
		o, err := optionsFromEnv(mapLookup(map[string]string{
			"VMSIM_NUM_FRAMES":     "8",
			"VMSIM_TLB":            "false",
			"VMSIM_TLB_INDEX_BITS": "2",
			"VMSIM_TLB_LINES":      " 4 ",
			"VMSIM_POLICY":         "MaxTime",
			"VMSIM_SWAP":           "file:/tmp/swap",
			"VMSIM_SEED":           "0x10",
		}))

		Expect(err).NotTo(HaveOccurred())
		Expect(o).To(Equal(options{
			NumFrames:    8,
			TLB:          false,
			TLBIndexBits: 2,
			TLBLines:     4,
			Policy:       "maxtime",
			Swap:         "file:/tmp/swap",
			Seed:         16,
		}))

		cfg, err := o.config()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.TLBIndexBits).To(Equal(uint64(2)))
		Expect(cfg.TLBTagBits).To(Equal(uint64(34)))
	})

	It("should reject malformed values", func() {
		_, err := optionsFromEnv(mapLookup(map[string]string{
			"VMSIM_NUM_FRAMES": "many",
		}))

		Expect(err).To(MatchError(errBadOption))
		Expect(err.Error()).To(ContainSubstring("VMSIM_NUM_FRAMES"))
	})

	It("should reject invalid layouts", func() {
		o := defaultOptions()
		o.NumFrames = 0
		_, err := o.config()
		Expect(err).To(MatchError(vm.ErrInvalidConfig))

		o = defaultOptions()
		o.TLBIndexBits = 40
		_, err = o.config()
		Expect(err).To(MatchError(errBadOption))
	})

	It("should prefer the process environment over the env file", func() {
		envFile := filepath.Join(GinkgoT().TempDir(), "test.env")
		Expect(os.WriteFile(envFile, []byte(
			"VMSIM_NUM_FRAMES=8\nVMSIM_SEED=3\n"), 0o644)).To(Succeed())
		GinkgoT().Setenv("VMSIM_SEED", "5")

		lookup, err := envLookup(envFile)
		Expect(err).NotTo(HaveOccurred())
		o, err := optionsFromEnv(lookup)

		Expect(err).NotTo(HaveOccurred())
		Expect(o.NumFrames).To(Equal(8))
		Expect(o.Seed).To(Equal(int64(5)))
	})

	It("should accept a missing env file", func() {
		lookup, err := envLookup(filepath.Join(GinkgoT().TempDir(), "none"))

		Expect(err).NotTo(HaveOccurred())
		_, ok := lookup("VMSIM_NO_SUCH_KEY")
		Expect(ok).To(BeFalse())
	})

	It("should let flags override", func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		addFlags(flags)
		Expect(flags.Parse([]string{
			"--frames", "2", "--policy", "MAXTIME", "--tlb=false",
		})).To(Succeed())

		o := defaultOptions()
		o.Seed = 9
		o = o.applyFlags(flags)

		Expect(o.NumFrames).To(Equal(2))
		Expect(o.Policy).To(Equal("maxtime"))
		Expect(o.TLB).To(BeFalse())
		Expect(o.Seed).To(Equal(int64(9)))
	})

	It("should pick the victim finder", func() {
		o := defaultOptions()
		f, err := o.victimFinder()
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeAssignableToTypeOf(&frametable.LRUVictimFinder{}))

		o.Policy = "maxtime"
		f, err = o.victimFinder()
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeAssignableToTypeOf(&frametable.MaxTimeVictimFinder{}))

		o.Policy = "fifo"
		_, err = o.victimFinder()
		Expect(err).To(MatchError(errBadOption))
	})

	Context("swap stores", func() {
		cfg := vm.DefaultConfig()

		It("should open an in-memory store", func() {
			s, closer, err := defaultOptions().swapStore(cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeAssignableToTypeOf(&swap.MemStore{}))
			Expect(closer.Close()).To(Succeed())
		})

		It("should open a file store", func() {
			o := defaultOptions()
			o.Swap = "file:" + GinkgoT().TempDir()

			s, _, err := o.swapStore(cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeAssignableToTypeOf(&swap.FileStore{}))
		})

		It("should open a SQLite store", func() {
			o := defaultOptions()
			o.Swap = "sqlite:" + filepath.Join(GinkgoT().TempDir(), "swap.db")

			s, closer, err := o.swapStore(cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeAssignableToTypeOf(&swap.SQLiteStore{}))
			Expect(closer.Close()).To(Succeed())
		})

		DescribeTable("should reject bad stores",
			func(store string) {
				o := defaultOptions()
				o.Swap = store

				_, _, err := o.swapStore(cfg)

				Expect(err).To(MatchError(errBadOption))
			},
			Entry("unknown kind", "tape"),
			Entry("file without directory", "file:"),
			Entry("sqlite without file", "sqlite"),
		)
	})

	It("should build an MMU", func() {
		o := defaultOptions()
		o.NumFrames = 2
		o.TLB = false

		c, closer, err := o.buildMMU("MMU")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.FrameTable().NumFrames()).To(Equal(2))
		Expect(c.TLB()).To(BeNil())
		Expect(closer.Close()).To(Succeed())
	})
})
