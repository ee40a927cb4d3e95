package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
GoVV ride tracker

Usage:
  tracker [-mode tracker|standing-worker] [-config-path config.yaml]
  tracker -help

Modes:
  tracker           HTTP API: ride sessions, activities, standing, exports, live websocket
  standing-worker   consumes activity.created events and refreshes the cached standing
                    (needs RABBITMQ_ENABLED=true and STORE_DRIVER=sqlite or postgres)

Every setting can come from the YAML file or the environment (environment wins),
for example STORE_DRIVER=sqlite, REDIS_ADDR=localhost:6379, RABBITMQ_ENABLED=true.

Flags:
`

func PrintHelp() {
	fmt.Printf("%s", HelpMessage)
	flag.PrintDefaults()
}
