/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: snapshot.go
Description: PNG snapshots of rendered reports using headless Chrome through chromedp.
Page exceptions raised while rendering are collected and logged with the snapshot.
*/

package reporting

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// RenderTimeout bounds how long a snapshot waits for charts to finish drawing
const RenderTimeout = 15 * time.Second

// Snapshot renders an HTML report in headless Chrome and writes a full-page PNG.
// It returns the JavaScript exceptions raised by the page, which usually mean the chart
// libraries could not be fetched.
func (g *Generator) Snapshot(ctx context.Context, htmlPath, pngPath string) ([]string, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("report not found: %w", err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var (
		mu         sync.Mutex
		exceptions []string
	)
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventExceptionThrown); ok {
			mu.Lock()
			exceptions = append(exceptions, e.ExceptionDetails.Error())
			mu.Unlock()
		}
	})

	var (
		rendered bool
		buf      []byte
	)
	err = chromedp.Run(browserCtx,
		runtime.Enable(),
		emulation.SetDeviceMetricsOverride(g.width, g.height, 1, false),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.body.dataset.rendered === "true"`, &rendered, chromedp.WithPollingTimeout(RenderTimeout)),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(pngPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	entry := g.logger.WithFields(logrus.Fields{
		"path":       pngPath,
		"bytes":      len(buf),
		"exceptions": len(exceptions),
	})
	if len(exceptions) > 0 {
		entry.Warning("Report snapshot captured with page errors")
	} else {
		entry.Info("Report written")
	}
	return append([]string(nil), exceptions...), nil
}

// SetViewport sets the browser viewport used by Snapshot
func (g *Generator) SetViewport(width, height int64) {
	if width > 0 {
		g.width = width
	}
	if height > 0 {
		g.height = height
	}
}
