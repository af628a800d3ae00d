package grbl

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/mastercactapus/probecnc/machine"
)

// statusPollInterval is how often `?` is sent to refresh the
// realtime status report.
const statusPollInterval = 500 * time.Millisecond

// SerialAdapter drives a Grbl controller over a direct serial
// connection.
type SerialAdapter struct {
	*Conn

	mx    sync.Mutex
	last  machine.State
	state chan machine.State
	data  chan string

	probes      []machine.ProbeResult
	getProbes   chan []machine.ProbeResult
	resetProbes chan struct{}
}

var _ machine.Adapter = (*SerialAdapter)(nil)

func NewSerialAdapter(rw io.ReadWriter) *SerialAdapter {
	adapter := &SerialAdapter{
		Conn: NewConn(rw),

		state:       make(chan machine.State),
		data:        make(chan string),
		getProbes:   make(chan []machine.ProbeResult),
		resetProbes: make(chan struct{}),
	}
	go adapter.pollLoop()
	go adapter.loop()
	go adapter.readLoop()

	return adapter
}

func (adapter *SerialAdapter) pollLoop() {
	t := time.NewTicker(statusPollInterval)
	defer t.Stop()
	for range t.C {
		if adapter.Conn.closed() {
			return
		}
		adapter.Conn.WriteByte('?')
	}
}

func (adapter *SerialAdapter) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := adapter.Read(buf)
		if err == io.ErrClosedPipe {
			return
		}
		if err != nil {
			log.Println("ERROR: read from port:", err)
			continue
		}
		adapter.data <- string(buf[:n])
	}
}

func (adapter *SerialAdapter) Probes() []machine.ProbeResult { return <-adapter.getProbes }

func (adapter *SerialAdapter) ResetProbes() { adapter.resetProbes <- struct{}{} }

func (adapter *SerialAdapter) State() chan machine.State { return adapter.state }

func (adapter *SerialAdapter) CurrentState() machine.State {
	adapter.mx.Lock()
	defer adapter.mx.Unlock()
	return adapter.last
}

func (adapter *SerialAdapter) loop() {
	for {
		select {
		case <-adapter.resetProbes:
			adapter.probes = nil
		case adapter.getProbes <- adapter.probes:
		case data := <-adapter.data:
			if len(data) == 0 {
				continue
			}
			switch data[0] {
			case '<':
				stat, err := parseStatus(adapter.last, data)
				if err != nil {
					log.Println("ERROR: parse status:", err)
					continue
				}
				adapter.mx.Lock()
				adapter.last = *stat
				adapter.mx.Unlock()
				select {
				case adapter.state <- *stat:
				default:
				}
			case '[':
				prb, err := parseProbe(data)
				if err != nil {
					log.Println("ERROR: parse probe:", err)
					continue
				}
				adapter.probes = append(adapter.probes, *prb)
			}
		}
	}
}
