package report

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageInfo describes one page of a written report.
type PageInfo struct {
	Number int
	// Streams counts the content streams of the page.
	Streams int
	// ContentBytes is their total decoded size.
	ContentBytes int
}

// Inspect reads a PDF back and measures the content streams of each page.
func Inspect(path string) ([]PageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return nil, fmt.Errorf("optimize xref: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	pages := make([]PageInfo, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", i, err)
		}
		info := PageInfo{Number: i}
		var pending []types.Object
		if obj, found := pageDict.Find("Contents"); found {
			pending = append(pending, obj)
		}
		// Contents is a stream or an array of streams.
		for len(pending) > 0 {
			obj, err := ctx.Dereference(pending[0])
			pending = pending[1:]
			if err != nil {
				return nil, fmt.Errorf("page %d contents: %w", i, err)
			}
			switch v := obj.(type) {
			case types.StreamDict:
				if err := v.Decode(); err != nil {
					return nil, fmt.Errorf("page %d decode stream: %w", i, err)
				}
				info.Streams++
				info.ContentBytes += len(v.Content)
			case types.Array:
				pending = append(pending, v...)
			default:
				return nil, fmt.Errorf("page %d: unexpected contents %T", i, obj)
			}
		}
		pages = append(pages, info)
	}
	return pages, nil
}

// Verify checks that the file at path has exactly want pages and that none
// of them is blank.
func Verify(path string, want int) error {
	pages, err := Inspect(path)
	if err != nil {
		return err
	}
	if len(pages) != want {
		return fmt.Errorf("%s: %d pages, want %d", path, len(pages), want)
	}
	for _, p := range pages {
		if p.ContentBytes == 0 {
			return fmt.Errorf("%s: page %d is blank", path, p.Number)
		}
	}
	return nil
}
