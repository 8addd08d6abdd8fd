package extract

import (
	"bytes"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// SelectorStrategy tries known content containers in order; first match wins.
type SelectorStrategy struct {
	selectors   []string
	boilerplate []string
}

func NewSelectorStrategy(selectors, boilerplate []string) *SelectorStrategy {
	return &SelectorStrategy{selectors: selectors, boilerplate: boilerplate}
}

func (s *SelectorStrategy) Name() string { return "selectors" }

func (s *SelectorStrategy) Extract(p *Page) (string, bool) {
	for _, sel := range s.selectors {
		node := p.Doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		p.ContainerMatched = true
		text := Clean(paragraphText(node), s.boilerplate)
		return text, viable(text)
	}
	return "", false
}

// BlockScanStrategy picks the first div whose text is long enough to be the article.
type BlockScanStrategy struct {
	threshold   int
	boilerplate []string
}

func NewBlockScanStrategy(threshold int, boilerplate []string) *BlockScanStrategy {
	return &BlockScanStrategy{threshold: threshold, boilerplate: boilerplate}
}

func (s *BlockScanStrategy) Name() string { return "block-scan" }

func (s *BlockScanStrategy) Extract(p *Page) (string, bool) {
	if p.ContainerMatched {
		return "", false
	}
	var block *goquery.Selection
	p.Doc.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if strippedLength(div) > s.threshold {
			block = div
			return false
		}
		return true
	})
	if block == nil {
		return "", false
	}
	text := Clean(paragraphText(block), s.boilerplate)
	return text, viable(text)
}

// ReadabilityStrategy runs a generic readability extractor over the raw page.
// The article HTML is flattened to markdown so paragraph breaks are kept.
type ReadabilityStrategy struct {
	converter   *md.Converter
	boilerplate []string
}

func NewReadabilityStrategy(boilerplate []string) *ReadabilityStrategy {
	return &ReadabilityStrategy{
		converter:   md.NewConverter("", true, nil),
		boilerplate: boilerplate,
	}
}

func (s *ReadabilityStrategy) Name() string { return "readability" }

func (s *ReadabilityStrategy) Extract(p *Page) (string, bool) {
	article, err := readability.FromReader(bytes.NewReader(p.Raw), p.URL)
	if err != nil {
		return "", false
	}

	text := ""
	if content := strings.TrimSpace(article.Content); content != "" {
		if converted, err := s.converter.ConvertString(content); err == nil {
			text = converted
		}
	}
	if strings.TrimSpace(text) == "" {
		text = article.TextContent
	}

	text = Clean(text, s.boilerplate)
	return text, text != ""
}
