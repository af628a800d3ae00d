// Package spjs is a client for Serial-Port-JSON-Server, a websocket
// bridge to serial devices. It reconnects automatically and exposes
// the server's push messages as typed values.
package spjs

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const reconnectDelay = 3 * time.Second

type SPJS struct {
	url string

	outgoing chan message
	incoming chan interface{}
}

type message struct {
	done    chan struct{}
	payload []byte
}

// DataFrame is a line received from the serial device.
type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}

// CmdStatus reports queueing progress of a submitted command.
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}

type SerialPortList struct {
	SerialPorts []SerialPort
}

type SerialPort struct {
	Name            string
	Friendly        string
	SerialNumber    string
	DeviceClass     string
	IsOpen          bool
	IsPrimary       bool
	Baud            int
	BufferAlgorithm string
	Ver             float64
}

// New dials url in the background and keeps the connection alive.
func New(url string) *SPJS {
	sp := &SPJS{
		url:      url,
		outgoing: make(chan message, 1000),
		incoming: make(chan interface{}, 1000),
	}

	go sp.loop()

	return sp
}

// Messages delivers parsed push messages: *DataFrame, *CmdStatus,
// *SerialPortList, or *ErrorMessage.
func (sp *SPJS) Messages() chan interface{} {
	return sp.incoming
}

func parseMessage(data []byte, msg map[string]json.RawMessage) (val interface{}, err error) {
	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	// order matters: frames carry D, command status carries Type
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Type", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

func (sp *SPJS) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			log.Println("ERROR: read:", err)
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// command echoes are plain text
			continue
		}
		var msg map[string]json.RawMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Println("ERROR: read:", err)
			continue
		}
		val, err := parseMessage(data, msg)
		if err != nil {
			log.Println("ERROR: parse:", err)
			continue
		}
		sp.incoming <- val
	}
}

func (sp *SPJS) loop() {
	var nextUp message

reconnect:
	for {
		log.Println("Connecting to", sp.url)
		ws, _, err := websocket.DefaultDialer.Dial(sp.url, nil)
		if err != nil {
			log.Println("ERROR: connect:", err)
			time.Sleep(reconnectDelay)
			continue
		}
		log.Println("Connected.")
		ch := make(chan struct{})
		go sp.readLoop(ws, ch)
		go sp.WriteString("list") // refresh port list on reconnect

		for {
			if nextUp.done != nil {
				err = ws.WriteMessage(websocket.TextMessage, nextUp.payload)
				if err != nil {
					log.Println("ERROR: send:", err)
					continue reconnect
				}
				close(nextUp.done)
				nextUp.done = nil
			}

			select {
			case <-ch:
				continue reconnect
			case nextUp = <-sp.outgoing:
			}
		}
	}
}

// JSON is a sendjson request body.
type JSON struct {
	Port string `json:"P"`
	Data []Data
}

type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

// SendJSON queues a sendjson request and blocks until it is on the
// wire.
func (sp *SPJS) SendJSON(v JSON) {
	data, err := json.Marshal(v)
	if err != nil {
		// we control everything that goes out
		log.Panicln("ERROR: sendjson (marshal):", err)
	}

	ch := make(chan struct{})
	sp.outgoing <- message{done: ch, payload: append([]byte("sendjson "), data...)}
	<-ch
}

// WriteString queues a raw command like "list" or "open ..." and
// blocks until it is on the wire.
func (sp *SPJS) WriteString(data string) {
	ch := make(chan struct{})
	sp.outgoing <- message{done: ch, payload: []byte(data)}
	<-ch
}
