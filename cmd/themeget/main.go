package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	get "github.com/hashicorp/go-getter"
)

func main() {
	var (
		base = flag.String("base", "https://github.com/OCharnyshevich/dungeon-themes.git", "base url")
		pack = flag.String("pack", "classic", "theme pack name")
		out  = flag.String("o", "./themes", "output dir path")
	)
	flag.Parse()

	if *out == "" {
		panic("output dir path required")
	}

	if *pack == "" {
		panic("theme pack name required")
	}

	path := fmt.Sprintf("%s/%s", *out, *pack)

	if err := os.RemoveAll(path); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading theme pack %s", path)

	// https://github.com/OCharnyshevich/dungeon-themes/tree/master/packs/classic
	url := fmt.Sprintf("git::%s//packs/%s", *base, *pack)

	if err := get.Get(path, url); err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading theme pack %s", path)
}
