// Package md2wechat converts Markdown notes into HTML that survives pasting
// into a restrictive rich-text editor such as the WeChat official-account
// editor.
//
// # Quick Start
//
//	conv, err := md2wechat.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, md2wechat.Input{
//	    Markdown:   "# Hello\n\n- **Label**: body\n\n$$E=mc^2$$",
//	    SourcePath: "/vault/notes/hello.md",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.html", []byte(result.HTML), 0644)
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing: fence-aware passes that rewrite ![[embeds]],
//     strip frontmatter, pre-render math into opaque placeholders, escape
//     pseudo-HTML, unsafe links and wikilinks, and inject hard breaks
//  2. Host rendering into a scratch DOM subtree, through either calling
//     convention (IntoRenderer or HostRenderer)
//  3. Settle detection: polling until asynchronously resolved image embeds
//     are in place, with an observation window when local images are present
//  4. Serialization: placeholders are replaced by the rendered formulas
//  5. Structural cleaning of lists and paragraphs for the editor
//
// The default host renderer is goldmark based: raw HTML is sanitized with
// bluemonday, code is highlighted with inline chroma styles and local images
// are resolved against a vault directory.
//
// # Configuration
//
//	conv, err := md2wechat.NewConverter(
//	    md2wechat.WithVaultDir("/path/to/vault"),
//	    md2wechat.WithSettleTiming(md2wechat.SettleOptions{Timeout: time.Second}),
//	    md2wechat.WithLegacyFallback(true),
//	    md2wechat.WithLogger(log.Printf),
//	)
//
// A custom host renderer implements RenderInto, or Render together with a
// host binding set with WithHost or Input.Host.
//
// # Parallel Processing
//
// A Converter is safe for concurrent use. ConverterPool bounds the number
// of conversions in flight for batch jobs:
//
//	pool := md2wechat.NewConverterPool(4)
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
package md2wechat
