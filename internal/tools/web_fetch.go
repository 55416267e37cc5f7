package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head><title>Simulated page: %[1]s</title><style>body { font-family: sans-serif; }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Simulated content</h1>
<p>This page stands in for <a href="%[1]s">%[1]s</a>. No network request was made.</p>
<h2>Highlights</h2>
<ul><li>Open issues: <strong>12</strong></li><li>Sprint ends <em>Friday</em></li></ul>
<script>trackVisit();</script>
</body>
</html>`

func getWebpageContent(ctx context.Context, args map[string]any) (Result, error) {
	url := GetStringDefault(args, "url", "")

	page := fmt.Sprintf(fixturePage, html.EscapeString(url))
	title, content, err := htmlToText(page)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return NewSuccessResult(map[string]any{
		"url":     url,
		"title":   title,
		"content": content,
	}), nil
}

func fetchURL(ctx context.Context, args map[string]any) (Result, error) {
	url := GetStringDefault(args, "url", "")
	method := strings.ToUpper(GetStringDefault(args, "method", "GET"))

	body, err := json.Marshal(map[string]any{
		"url":       url,
		"method":    method,
		"simulated": true,
	})
	if err != nil {
		return nil, err
	}

	return NewSuccessResult(map[string]any{
		"url":     url,
		"method":  method,
		"status":  200,
		"headers": map[string]string{"content-type": "application/json"},
		"body":    string(body),
	}), nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// htmlToText converts HTML to markdown-like text and returns the page title.
func htmlToText(htmlContent string) (string, string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}

	skipTags := map[string]bool{
		"script": true, "style": true, "nav": true, "footer": true,
		"aside": true, "noscript": true, "iframe": true,
	}

	var title string
	var content strings.Builder
	var extract func(*html.Node)

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skipTags[tag] {
				return
			}
			if tag == "title" {
				if n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}

			switch tag {
			case "h1":
				content.WriteString("\n# ")
			case "h2":
				content.WriteString("\n## ")
			case "h3":
				content.WriteString("\n### ")
			case "li":
				content.WriteString("\n- ")
			case "br":
				content.WriteString("\n")
			case "strong", "b":
				content.WriteString("**")
			case "em", "i":
				content.WriteString("*")
			case "p", "div", "section", "article":
				content.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) != "" {
				content.WriteString(whitespaceRun.ReplaceAllString(n.Data, " "))
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "strong", "b":
				content.WriteString("**")
			case "em", "i":
				content.WriteString("*")
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && attr.Val != "" && !strings.HasPrefix(attr.Val, "#") {
						content.WriteString(" (" + attr.Val + ")")
						break
					}
				}
			case "p", "h1", "h2", "h3", "ul":
				content.WriteString("\n")
			}
		}
	}
	extract(doc)

	lines := strings.Split(content.String(), "\n")
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return title, strings.Join(out, "\n"), nil
}
