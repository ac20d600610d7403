//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/vectral/vectral/backend-go/internal/editor"
	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/scene"
	"github.com/vectral/vectral/backend-go/internal/transform"
)

var (
	ed      *editor.Editor
	errArgs = errors.New("missing arguments")
)

func main() {
	ed = editor.New(editor.Options{UserID: "local"})

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("createRectangle", js.FuncOf(createRectangle))
	api.Set("createCircle", js.FuncOf(createCircle))
	api.Set("createEllipse", js.FuncOf(createEllipse))
	api.Set("createPolygon", js.FuncOf(createPolygon))
	api.Set("createStar", js.FuncOf(createStar))
	api.Set("createText", js.FuncOf(createText))
	api.Set("completePen", js.FuncOf(completePen))
	api.Set("deleteElements", js.FuncOf(deleteElements))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("clearSelection", js.FuncOf(clearSelection))
	api.Set("beginDrag", js.FuncOf(beginDrag))
	api.Set("drag", js.FuncOf(drag))
	api.Set("endDrag", js.FuncOf(endDrag))
	api.Set("cancelDrag", js.FuncOf(cancelDrag))
	api.Set("align", js.FuncOf(align))
	api.Set("distribute", js.FuncOf(distribute))
	api.Set("group", js.FuncOf(group))
	api.Set("ungroup", js.FuncOf(ungroup))
	api.Set("bringToFront", js.FuncOf(bringToFront))
	api.Set("sendToBack", js.FuncOf(sendToBack))
	api.Set("moveUp", js.FuncOf(moveUp))
	api.Set("moveDown", js.FuncOf(moveDown))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("importSVG", js.FuncOf(importSVG))
	api.Set("loadScene", js.FuncOf(loadScene))

	// --- Queries (frontend ← engine) ---
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getHandles", js.FuncOf(getHandles))
	api.Set("getElements", js.FuncOf(getElements))
	api.Set("getLayerTree", js.FuncOf(getLayerTree))
	api.Set("exportSVG", js.FuncOf(exportSVG))
	api.Set("saveScene", js.FuncOf(saveScene))

	// Register on global scope
	js.Global().Set("vectralEngine", api)

	// Signal that WASM is ready
	js.Global().Set("vectralWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func jsonResult(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func createRectangle(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errResult(errArgs)
	}
	el, err := ed.CreateRectangle(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func createCircle(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errResult(errArgs)
	}
	el, err := ed.CreateCircle(args[0].Float(), args[1].Float(), args[2].Float())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func createEllipse(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errResult(errArgs)
	}
	el, err := ed.CreateEllipse(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func createPolygon(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errResult(errArgs)
	}
	el, err := ed.CreatePolygon(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Int())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func createStar(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return errResult(errArgs)
	}
	el, err := ed.CreateStar(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float(), args[4].Int())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func createText(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errResult(errArgs)
	}
	el, err := ed.CreateText(args[0].Float(), args[1].Float(), args[2].String())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func completePen(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult(errArgs)
	}
	var points []geometry.Point
	if err := json.Unmarshal([]byte(args[0].String()), &points); err != nil {
		return errResult(err)
	}
	el, err := ed.CompletePen(points, args[1].Bool())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(el)
}

func deleteElements(this js.Value, args []js.Value) interface{} {
	if err := ed.Delete(stringArgs(args)...); err != nil {
		return errResult(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if err := ed.Select(stringArgs(args)...); err != nil {
		return errResult(err)
	}
	return nil
}

func clearSelection(this js.Value, args []js.Value) interface{} {
	ed.ClearSelection()
	return nil
}

func beginDrag(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult(errArgs)
	}
	origin := geometry.Point{X: args[0].Float(), Y: args[1].Float()}
	if err := ed.BeginDrag(origin); err != nil {
		return errResult(err)
	}
	return nil
}

func drag(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	var delta geometry.Transform
	if err := json.Unmarshal([]byte(args[0].String()), &delta); err != nil {
		return errResult(err)
	}
	states, guides := ed.Drag(delta)
	return jsonResult(map[string]interface{}{"states": states, "guides": guides})
}

func endDrag(this js.Value, args []js.Value) interface{} {
	if err := ed.EndDrag(); err != nil {
		return errResult(err)
	}
	return nil
}

func cancelDrag(this js.Value, args []js.Value) interface{} {
	ed.CancelDrag()
	return nil
}

func align(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	if err := ed.Align(transform.Alignment(args[0].String())); err != nil {
		return errResult(err)
	}
	return nil
}

func distribute(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	if err := ed.Distribute(transform.Axis(args[0].String())); err != nil {
		return errResult(err)
	}
	return nil
}

func group(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult(errArgs)
	}
	var ids []string
	if err := json.Unmarshal([]byte(args[0].String()), &ids); err != nil {
		return errResult(err)
	}
	layer, err := ed.Group(ids, args[1].String())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(layer)
}

func ungroup(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	childIDs, err := ed.Ungroup(args[0].String())
	if err != nil {
		return errResult(err)
	}
	return jsonResult(childIDs)
}

func bringToFront(this js.Value, args []js.Value) interface{} { return zorder(args, ed.BringToFront) }
func sendToBack(this js.Value, args []js.Value) interface{}   { return zorder(args, ed.SendToBack) }
func moveUp(this js.Value, args []js.Value) interface{}       { return zorder(args, ed.MoveUp) }
func moveDown(this js.Value, args []js.Value) interface{}     { return zorder(args, ed.MoveDown) }

func zorder(args []js.Value, fn func(string) error) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	if err := fn(args[0].String()); err != nil {
		return errResult(err)
	}
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Redo())
}

func importSVG(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	els, err := ed.ImportSVG([]byte(args[0].String()))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(els)
}

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult(errArgs)
	}
	var sd scene.SceneDocument
	if err := json.Unmarshal([]byte(args[0].String()), &sd); err != nil {
		return errResult(err)
	}
	if err := ed.LoadScene(sd); err != nil {
		return errResult(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	id, ok := ed.HitTest(geometry.Point{X: args[0].Float(), Y: args[1].Float()})
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(id)
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.Selection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.SelectionBounds())
}

func getHandles(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.Handles())
}

func getElements(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.Document().Elements())
}

func getLayerTree(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.Tree().LayerOrder())
}

func exportSVG(this js.Value, args []js.Value) interface{} {
	out, err := ed.ExportSVG()
	if err != nil {
		return errResult(err)
	}
	return js.ValueOf(string(out))
}

func saveScene(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.SaveScene())
}

func stringArgs(args []js.Value) []string {
	var out []string
	for _, a := range args {
		if a.Type() == js.TypeString {
			out = append(out, a.String())
		}
	}
	return out
}
