// coordinator starts an RPC server and launches samplers and loaders
// in its squad through srv.LaunchWorkers, which hands each process to
// prism with a retry count of 1.
//
// The master starts it (srv.LaunchSquads) with the JSON-encoded
// configuration in -config and the coordinator's own address in
// -addr.
package main

import (
	"flag"
	"fmt"
	"github.com/wangkuiyi/vertexlda/srv"
	"log"
)

var (
	addr = flag.String("addr", "", "The address of coordinator")
)

func main() {
	cfg := new(srv.Config)
	cfg.RegisterAsFlag()
	flag.Parse()

	log.SetPrefix(fmt.Sprintf("vertexlda.coordinator-%s ", *addr))

	if e := srv.RunCoordinator(cfg, *addr); e != nil {
		log.Fatalf("Failed start squad %s: %v", *addr, e)
	}
}
