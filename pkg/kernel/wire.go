// Copyright 2026 The rvkernel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import "encoding/binary"

// SyscallArgVAddr is the fixed user-space virtual address of the
// syscall argument block (spec §6's SYSCALL_ARG).
const SyscallArgVAddr = 0x3ff000

// syscallWireLen is the size, in bytes, of the argument block: 1 byte
// type, two int32 pid fields (receiver, sender/filter), one uint64
// sleep duration, and the MsgLen-byte payload.
const syscallWireLen = 1 + 4 + 4 + 8 + MsgLen

// EncodeSyscallArgs packs a syscall request into the fixed wire layout
// a user process writes to SyscallArgVAddr before trapping in via
// ecall. Exported for internal/workload, which plays the role of user
// space in the simulation harness.
func EncodeSyscallArgs(s Syscall) []byte {
	b := make([]byte, syscallWireLen)
	b[0] = byte(s.Type)
	binary.LittleEndian.PutUint32(b[1:5], uint32(int32(s.Receiver)))
	binary.LittleEndian.PutUint32(b[5:9], uint32(int32(s.Sender)))
	binary.LittleEndian.PutUint64(b[9:17], s.SleepDurationUS)
	copy(b[17:17+MsgLen], s.Content[:])
	return b
}

// decodeSyscallArgs is the dispatcher-side inverse of
// EncodeSyscallArgs, used when copying the user-space argument block
// into a PCB's syscall field at ecall entry.
func decodeSyscallArgs(b []byte) Syscall {
	var s Syscall
	s.Type = SyscallType(b[0])
	s.Receiver = int(int32(binary.LittleEndian.Uint32(b[1:5])))
	s.Sender = int(int32(binary.LittleEndian.Uint32(b[5:9])))
	s.SleepDurationUS = binary.LittleEndian.Uint64(b[9:17])
	copy(s.Content[:], b[17:17+MsgLen])
	return s
}
