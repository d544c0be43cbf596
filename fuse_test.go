/*
 *    Copyright 2025 Jeff Galyan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package talus_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jrgalyan/talus"
)

var _ = Describe("Fuse", func() {
	It("fuses a connection that never completes its TLS handshake within the timeout", func() {
		wire := talus.FlexibleFusewire{HandshakeTimeout: 20 * time.Millisecond, IdleFrameTimeout: time.Hour}
		f := talus.NewFuse("conn-1", wire, nil)
		defer f.Stop()

		select {
		case <-f.Fused():
		case <-time.After(2 * time.Second):
			Fail("expected fuse to trip on handshake timeout")
		}
	})

	It("does not fuse a connection that completes its handshake promptly", func() {
		wire := talus.FlexibleFusewire{HandshakeTimeout: 2 * time.Second, IdleFrameTimeout: time.Hour}
		f := talus.NewFuse("conn-2", wire, nil)
		defer f.Stop()

		f.Report(talus.FuseEvent{Kind: talus.TLSHandshaked})

		select {
		case <-f.Fused():
			Fail("fuse tripped even though handshake completed")
		case <-time.After(200 * time.Millisecond):
		}
	})

	It("fuses a connection stuck waiting on its next frame past the idle timeout", func() {
		wire := talus.FlexibleFusewire{HandshakeTimeout: time.Hour, IdleFrameTimeout: 20 * time.Millisecond}
		f := talus.NewFuse("conn-3", wire, nil)
		defer f.Stop()

		f.Report(talus.FuseEvent{Kind: talus.TLSHandshaked})
		f.Report(talus.FuseEvent{Kind: talus.WaitFrame})

		select {
		case <-f.Fused():
		case <-time.After(2 * time.Second):
			Fail("expected fuse to trip on idle-frame timeout")
		}
	})

	It("GainFrame clears the waiting state so idle timeout does not fire", func() {
		wire := talus.FlexibleFusewire{HandshakeTimeout: time.Hour, IdleFrameTimeout: 30 * time.Millisecond}
		f := talus.NewFuse("conn-4", wire, nil)
		defer f.Stop()

		f.Report(talus.FuseEvent{Kind: talus.TLSHandshaked})
		f.Report(talus.FuseEvent{Kind: talus.WaitFrame})
		f.Report(talus.FuseEvent{Kind: talus.GainFrame})

		select {
		case <-f.Fused():
			Fail("fuse tripped despite GainFrame clearing the wait")
		case <-time.After(200 * time.Millisecond):
		}
	})

	It("Stop releases the watcher without panicking and is idempotent", func() {
		wire := talus.DefaultFlexibleFusewire()
		f := talus.NewFuse("conn-5", wire, nil)
		f.Stop()
		f.Stop()
	})
})
