package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/memory"
)

var _ = Describe("Storage", func() {
	var storage *memory.Storage

	BeforeEach(func() {
		storage = memory.NewStorage(4096, 2)
	})

	It("should read and write in single frame", func() {
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across frames", func() {
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read untouched frames as zeros", func() {
		res, err := storage.Read(4096, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("should return error if accessing over the capacity", func() {
		err := storage.Write(8190, []byte{1, 2, 3})
		Expect(err).To(MatchError(memory.ErrOutOfRange))

		_, err = storage.Read(8192, 1)
		Expect(err).To(MatchError(memory.ErrOutOfRange))

		_, err = storage.ReadFrame(2)
		Expect(err).To(MatchError(memory.ErrOutOfRange))
	})

	It("should read frames as words", func() {
		Expect(storage.Write(4096, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2})).
			To(Succeed())

		words, err := storage.ReadFrame(1)

		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(HaveLen(512))
		Expect(words[0]).To(Equal(uint64(1)))
		Expect(words[1]).To(Equal(uint64(2)))
	})

	It("should write and zero frames", func() {
		words := make([]uint64, 512)
		words[511] = 0xabcd
		Expect(storage.WriteFrame(0, words)).To(Succeed())

		res, _ := storage.Read(4088, 2)
		Expect(res).To(Equal([]byte{0xcd, 0xab}))

		Expect(storage.ZeroFrame(0)).To(Succeed())
		res, _ = storage.Read(4088, 2)
		Expect(res).To(Equal([]byte{0, 0}))
	})

	It("should reject frame images of the wrong size", func() {
		Expect(storage.WriteFrame(0, make([]uint64, 3))).NotTo(Succeed())
	})
})
