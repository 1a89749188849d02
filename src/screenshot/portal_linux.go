//go:build linux

package screenshot

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/url"
	"os"

	"github.com/godbus/dbus/v5"
)

// portalBackend asks the desktop portal for a screenshot. Wayland sessions often
// refuse direct framebuffer access, so this is the path that still works there.
// The portal only returns the whole desktop, so the bounds always start at (0,0).
type portalBackend struct{}

func (portalBackend) CaptureDisplayAt(image.Point) (*image.RGBA, image.Rectangle, error) {
	img, err := portalScreenshot()
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return img, img.Bounds(), nil
}

func portalScreenshot() (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	opts := map[string]dbus.Variant{
		"interactive": dbus.MakeVariant(false),
	}
	var handle dbus.ObjectPath
	call := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", opts)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&handle); err != nil {
		return nil, err
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, err
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for sig := range sigc {
		if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
			continue
		}
		if len(sig.Body) < 2 {
			break
		}
		if code, ok := sig.Body[0].(uint32); ok && code != 0 {
			return nil, fmt.Errorf("portal request denied (response %d)", code)
		}
		res, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			break
		}
		uriVar, ok := res["uri"]
		if !ok {
			break
		}
		uri, _ := uriVar.Value().(string)
		return loadPortalFile(uri)
	}
	return nil, fmt.Errorf("portal screenshot failed")
}

func loadPortalFile(uri string) (*image.RGBA, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("bad portal uri %q: %w", uri, err)
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
