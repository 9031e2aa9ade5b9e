package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/epu/mmu"
)

func FuzzStep(f *testing.F) {
	for op := range 10 {
		f.Add([]byte{byte(op), 0x00, 0x00, 0x10, 0x01, 0x02, 0x03, 0x04}, uint32(0))
		f.Add([]byte{byte(op), 0x12, 0x21, 0x01, 0xff, 0xff, 0xff, 0xff}, uint32(1))
		f.Add([]byte{byte(op), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, uint32(1))
	}

	cpu := NewCpu(mmu.NewMemory())
	cpu.Interrupter = &testInterrupter{}

	f.Fuzz(func(t *testing.T, code []byte, space uint32) {
		assert := assert.New(t)

		if len(code) > mmu.POOL_SIZE {
			code = code[:mmu.POOL_SIZE]
		}

		cpu.Memory.Reset()
		assert.NoError(cpu.Memory.Load(testId, mmu.POOL_CODE, 0, code))
		ctx := cpu.Spawn(testId, space, testEntry)
		for reg := range REGISTER_COUNT {
			ctx.Register[reg] = uint32(reg) << 4
		}
		ctx.Cp = 0x100

		err := cpu.Step(testId)
		if err != nil {
			assert.ErrorIs(err, ErrOpcode{})
			assert.True(ctx.Flags.Stopped())
		} else {
			assert.Equal(Flags(0), ctx.Flags&^FLAG_HALT)
		}
	})
}
