package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"cogsguard-agent/internal/domain"
	"cogsguard-agent/internal/obs"
	"cogsguard-agent/pkg/api"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "decode":
		if len(os.Args) < 4 {
			fmt.Println("Usage: obsdump decode <episode.json> <base64_tokens>")
			return
		}
		if err := decode(os.Args[2], os.Args[3]); err != nil {
			fmt.Printf("Decode failed: %v\n", err)
			os.Exit(1)
		}
	case "loc":
		if len(os.Args) < 4 {
			fmt.Println("Usage: obsdump loc <byte> <radius>")
			return
		}
		b, err := strconv.ParseUint(os.Args[2], 0, 8)
		if err != nil {
			fmt.Printf("Invalid byte: %v\n", err)
			return
		}
		radius, err := strconv.Atoi(os.Args[3])
		if err != nil {
			fmt.Printf("Invalid radius: %v\n", err)
			return
		}
		off, ok := obs.DecodeLocation(byte(b), radius)
		if !ok {
			fmt.Printf("%s: outside window of radius %d\n", off, radius)
			return
		}
		fmt.Println(off)
	case "validate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: obsdump validate <message.json>")
			return
		}
		raw, err := os.ReadFile(os.Args[2])
		if err != nil {
			fmt.Printf("Read failed: %v\n", err)
			os.Exit(1)
		}
		v, err := api.NewValidator()
		if err != nil {
			fmt.Printf("Schemas failed to compile: %v\n", err)
			os.Exit(1)
		}
		typ, err := v.Validate(raw)
		if err != nil {
			fmt.Printf("%s: %v\n", typ, err)
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", typ)
	default:
		printHelp()
	}
}

func decode(episodePath, tokens string) error {
	raw, err := os.ReadFile(episodePath)
	if err != nil {
		return err
	}
	var ep api.EpisodeMsg
	if err := json.Unmarshal(raw, &ep); err != nil {
		return fmt.Errorf("episode: %w", err)
	}
	buf, err := base64.StdEncoding.DecodeString(strings.TrimSpace(tokens))
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	features := make([]obs.FeatureSpec, 0, len(ep.Features))
	for _, f := range ep.Features {
		features = append(features, obs.FeatureSpec{ID: uint8(f.ID), Name: f.Name, Normalization: float64(f.Normalization)})
	}
	vocab := obs.NewVocabulary(features, ep.Tags)

	o := obs.Decode(buf, ep.ObsRadius, ep.MaxTokens)
	offs := make([]domain.Location, 0, len(o.Cells))
	for off := range o.Cells {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool {
		if offs[i].Row != offs[j].Row {
			return offs[i].Row < offs[j].Row
		}
		return offs[i].Col < offs[j].Col
	})

	for _, off := range offs {
		view := vocab.Describe(o.At(off))
		fmt.Printf("%-9s tags=%v features=%v inventory=%v\n", off, view.Tags, view.Features, view.Inventory)
	}

	self := obs.ReadSelf(o, vocab, ep.ActionNames, ep.VibeNames)
	fmt.Printf("tokens=%d truncated=%v\n", o.Tokens, o.Truncated)
	fmt.Printf("self: vibe=%s last_action=%q visible=%v inventory=%v\n", self.Vibe, self.LastAction, self.AgentVisible, self.Inventory)
	return nil
}

func printHelp() {
	fmt.Println(`Obs Dump - разбор токенов наблюдения
Commands:
  decode <episode.json> <base64>  - расшифровать кадр по словарю эпизода
  loc <byte> <radius>             - разложить байт смещения
  validate <message.json>         - проверить сообщение по схемам протокола`)
}
