//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"lir/pkg/engine"
	"lir/pkg/parser"
	"lir/pkg/report"
	"lir/pkg/schema"
)

// NOTE: Each Web Worker loads its own WASM instance. Global state is NOT
// shared across workers. The identity worker accumulates sources and builds
// the index locally; dashboard workers receive the index via lirLoadIndex()
// and never call lirAddIdentitySource().

var (
	pendingIdentities []*schema.IdentityRecord
	globalIndex       *engine.IdentityIndex
)

func errResult(msg string) interface{} {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}

// addIdentitySource handles the lirAddIdentitySource JS function call.
// args[0] = Uint8Array (raw JSON payload from one directory source)
// args[1] = string (source name; later sources win index-key collisions)
func addIdentitySource(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("addIdentitySource requires 2 arguments: Uint8Array and source name")
	}

	payload := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(payload, args[0])
	source := args[1].String()

	result, err := parser.ParseWithWarnings(payload)
	if err != nil {
		return errResult(err.Error())
	}

	pendingIdentities = append(pendingIdentities, schema.NormalizeIdentities(result.Records, source)...)

	out, _ := json.Marshal(map[string]interface{}{
		"records":  len(result.Records),
		"warnings": result.Warnings,
	})
	return string(out)
}

// buildIndex handles the lirBuildIndex JS function call. It builds the index
// over every source added so far and clears the accumulator.
// Returns: JSON with "stats", "collisions", and "serializedIndex".
func buildIndex(this js.Value, args []js.Value) interface{} {
	globalIndex = engine.BuildIdentityIndex(pendingIdentities)
	pendingIdentities = nil

	// The serialized form is the ONLY way dashboard workers get the index;
	// they run in separate WASM instances with no shared memory.
	result := map[string]interface{}{
		"stats":           globalIndex.Stats,
		"collisions":      globalIndex.Collisions,
		"serializedIndex": engine.SerializeIndex(globalIndex),
	}
	out, _ := json.Marshal(result)
	return string(out)
}

// loadIndex handles the lirLoadIndex JS function call.
// args[0] = string (serialized index JSON from lirBuildIndex output)
func loadIndex(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("loadIndex requires 1 argument: serialized index JSON")
	}

	var err error
	globalIndex, err = engine.DeserializeIndex([]byte(args[0].String()))
	if err != nil {
		return errResult(err.Error())
	}
	return `{"ok": true}`
}

// dashboard handles the lirDashboard JS function call.
// args[0] = Uint8Array (raw license ledger JSON payload)
// args[1] = number (current time, epoch milliseconds)
// An index is optional here: without one the rows carry no identity metadata.
func dashboard(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("dashboard requires 2 arguments: Uint8Array and epoch millis")
	}

	payload := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(payload, args[0])
	now := time.UnixMilli(int64(args[1].Float()))

	result, err := parser.ParseWithWarnings(payload)
	if err != nil {
		return errResult(err.Error())
	}
	licenses := schema.NormalizeLicenses(result.Records)

	out, _ := json.Marshal(report.BuildDashboard(globalIndex, licenses, now))
	return string(out)
}

func main() {
	js.Global().Set("lirAddIdentitySource", js.FuncOf(addIdentitySource))
	js.Global().Set("lirBuildIndex", js.FuncOf(buildIndex))
	js.Global().Set("lirLoadIndex", js.FuncOf(loadIndex))
	js.Global().Set("lirDashboard", js.FuncOf(dashboard))

	// Block forever so the module stays alive
	select {}
}
