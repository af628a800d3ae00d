package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tarm/serial"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/fixture"
	"github.com/mastercactapus/probecnc/machine"
	"github.com/mastercactapus/probecnc/machine/grbl"
	"github.com/mastercactapus/probecnc/machine/sim"
	"github.com/mastercactapus/probecnc/spjs"
	"github.com/mastercactapus/probecnc/store"
)

func main() {
	log.SetFlags(log.Lshortfile)

	port := flag.String("port", "/dev/ttyUSB0", "Port path (or name if using SPJS).")
	spjsURL := flag.String("spjs", "", "Websocket URL of the SPJS server to use; empty for a direct serial connection.")
	controller := flag.String("controller", "grbl", "Controller to use: grbl or sim.")
	addr := flag.String("addr", ":9091", "Address to bind the server to.")
	dir := flag.String("dir", "./data", "Data directory to use.")
	configPath := flag.String("config", "./probecnc.toml", "Config file path.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("ERROR: load config: %+v", err)
	}

	if err = os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("ERROR: create data dir: %+v", err)
	}

	var adapter machine.Adapter
	switch *controller {
	case "grbl":
		if *spjsURL != "" {
			adapter = grbl.NewSPJSAdapter(spjs.New(*spjsURL), *port)
		} else {
			s, err := serial.OpenPort(&serial.Config{Name: *port, Baud: 115200})
			if err != nil {
				log.Fatalf("ERROR: open port: %+v", err)
			}
			adapter = grbl.NewSerialAdapter(s)
		}
	case "sim":
		// 100x100x25 block with its top corner at the origin
		adapter = sim.New(sim.Stock{
			Min: coord.Point{X: 0, Y: 0, Z: -25},
			Max: coord.Point{X: 100, Y: 100, Z: 0},
		}, coord.Point{X: 50, Y: 50, Z: 10})
	default:
		log.Fatal("unknown controller: " + *controller)
	}

	m := machine.NewMachine(adapter)

	fixtures, err := fixture.NewStore(*dir)
	if err != nil {
		log.Fatalf("ERROR: open fixture store: %+v", err)
	}

	history, err := store.Open(filepath.Join(*dir, "history.db"))
	if err != nil {
		log.Fatalf("ERROR: open history: %+v", err)
	}
	defer history.Close()

	api := newAPI(m, fixtures, history, *dir, cfg)

	err = http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		api.ServeHTTP(w, req)
	}))
	if err != nil {
		log.Fatal(err)
	}
}
