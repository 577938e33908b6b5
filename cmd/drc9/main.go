// This file is part of GamePawd.
//
// GamePawd is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamePawd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamePawd.  If not, see <https://www.gnu.org/licenses/>.

// Command drc9 loads a GamePad ARM9 firmware image and runs it headlessly,
// optionally mirroring its log tail to a serial monitor port (spec §6).
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/tarm/serial"

	"github.com/Hydr8gon/GamePawd/firmware"
	"github.com/Hydr8gon/GamePawd/hardware/core"
	"github.com/Hydr8gon/GamePawd/hardware/display"
	"github.com/Hydr8gon/GamePawd/logger"
)

func main() {
	var (
		flashPath   = flag.String("flash", "", "path to a raw FLASH image (flash.bin)")
		firmPath    = flag.String("firmware", "", "path to a packaged firmware container (drc_fw.bin)")
		cycleLimit  = flag.Uint64("cycles", 0, "stop after this many ARM9 cycles (0 = run until interrupted)")
		bootLogPath = flag.String("boot-log", "", "write the scanned partition table to this path as CBOR")
		monitor     = flag.String("monitor", "", "serial device to mirror the log tail to (e.g. /dev/ttyUSB0)")
		snapshot    = flag.String("snapshot", "", "periodically write the most recent frame to this PNG path")
		snapWidth   = flag.Int("snapshot-width", 0, "scale the snapshot to this width (0 = native 854x480)")
		snapHeight  = flag.Int("snapshot-height", 0, "scale the snapshot to this height (0 = native 854x480)")
	)
	flag.Parse()

	if *flashPath == "" && *firmPath == "" {
		fmt.Fprintln(os.Stderr, "drc9: one of -flash or -firmware is required")
		flag.Usage()
		os.Exit(2)
	}

	c := core.New()
	c.Reset()

	bootLog, err := loadImage(c, *flashPath, *firmPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drc9: %v\n", err)
		os.Exit(1)
	}
	if *bootLogPath != "" && bootLog != nil {
		if err := firmware.WriteBootLogCBOR(bootLog, *bootLogPath); err != nil {
			fmt.Fprintf(os.Stderr, "drc9: %v\n", err)
		}
	}

	var monitorPort io.Writer = os.Stdout
	if *monitor != "" {
		port, err := serial.OpenPort(&serial.Config{Name: *monitor, Baud: 115200})
		if err != nil {
			fmt.Fprintf(os.Stderr, "drc9: opening monitor port %q: %v\n", *monitor, err)
			os.Exit(1)
		}
		defer port.Close()
		monitorPort = port
	}

	runHeadless(c, *cycleLimit, monitorPort, *snapshot, *snapWidth, *snapHeight)
}

// writeSnapshot scales frame to w x h (when both are nonzero) and encodes
// it as a PNG at path, overwriting any previous snapshot.
func writeSnapshot(path string, frame *image.NRGBA, w, h int) error {
	img := image.Image(frame)
	if w > 0 && h > 0 {
		img = display.Scale(frame, w, h)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func loadImage(c *core.Core, flashPath, firmPath string) (*firmware.BootLog, error) {
	if firmPath != "" {
		return firmware.LoadContainer(c.Spi, firmPath)
	}
	return firmware.LoadRaw(c.Spi, flashPath)
}

// runHeadless drives the emulation thread directly (rather than Core.Start's
// goroutine) so a cycle limit can be enforced exactly, and periodically
// drains a completed frame and the log tail to monitorPort.
func runHeadless(c *core.Core, cycleLimit uint64, monitorPort io.Writer, snapshotPath string, snapWidth, snapHeight int) {
	const pollInterval = 16 * time.Millisecond
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	done := make(chan struct{})

	c.Start()
	go func() {
		<-stop
		c.Stop()
		close(done)
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var latest *image.NRGBA
			for frame := c.Display.GetBuffer(); frame != nil; frame = c.Display.GetBuffer() {
				latest = frame // a host window in a full build would present every frame; headless mode only keeps the last.
			}
			if snapshotPath != "" && latest != nil {
				if err := writeSnapshot(snapshotPath, latest, snapWidth, snapHeight); err != nil {
					fmt.Fprintf(os.Stderr, "drc9: writing snapshot: %v\n", err)
				}
			}
			var tail strings.Builder
			logger.Tail(&tail, 8)
			io.WriteString(monitorPort, tail.String())
		case <-done:
			return
		}
		if cycleLimit != 0 {
			// Cycle-limited runs are for scripted/CI use; stop once the
			// scheduler's own cycle counter passes the limit.
			if c.Scheduler.GlobalCycles() >= cycleLimit {
				c.Stop()
				return
			}
		}
	}
}
