package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ImageScraper busca imágenes candidatas para la foto de un producto del
// catálogo, para que el admin no tenga que salir a buscar URLs a mano.
type ImageScraper struct {
	client *http.Client
}

func NewImageScraper() *ImageScraper {
	return &ImageScraper{
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

var vqdPattern = regexp.MustCompile(`vqd="([^"]+)"`)

// SearchImages devuelve hasta maxResults URLs de imágenes para un producto.
// Usa DuckDuckGo Images y cae a un scrape básico de resultados web si la API
// no oficial no responde.
func (s *ImageScraper) SearchImages(ctx context.Context, productName, category string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = 6
	}
	if maxResults > 20 {
		maxResults = 20
	}

	query := buildImageQuery(productName, category)

	images, err := s.searchDuckDuckGo(ctx, query, maxResults)
	if err == nil && len(images) > 0 {
		log.Info().Str("query", query).Int("found", len(images)).Msg("imágenes encontradas en DuckDuckGo")
		return images, nil
	}
	log.Warn().Err(err).Str("query", query).Msg("búsqueda de imágenes por API falló, probando HTML")

	images, err = s.searchHTML(ctx, query, maxResults)
	if err == nil && len(images) > 0 {
		return images, nil
	}
	return nil, fmt.Errorf("no se encontraron imágenes: %w", err)
}

func buildImageQuery(productName, category string) string {
	parts := []string{strings.TrimSpace(productName)}
	if c := strings.TrimSpace(category); c != "" {
		parts = append(parts, c)
	}
	// Sesga la búsqueda hacia fotos de producto y no recetas o notas.
	parts = append(parts, "alimento producto")
	return strings.Join(parts, " ")
}

// searchDuckDuckGo usa la API no oficial de DuckDuckGo Images: primero
// levanta el token vqd de la página de búsqueda y después pide i.js.
func (s *ImageScraper) searchDuckDuckGo(ctx context.Context, query string, maxResults int) ([]string, error) {
	searchURL := fmt.Sprintf("https://duckduckgo.com/?q=%s&iax=images&ia=images", url.QueryEscape(query))

	body, err := s.fetch(ctx, searchURL, "")
	if err != nil {
		return nil, err
	}
	matches := vqdPattern.FindSubmatch(body)
	if len(matches) < 2 {
		return nil, fmt.Errorf("no se encontró token vqd")
	}
	vqd := string(matches[1])

	imageSearchURL := fmt.Sprintf("https://duckduckgo.com/i.js?q=%s&vqd=%s&o=json&p=1&s=0", url.QueryEscape(query), url.QueryEscape(vqd))
	data, err := s.fetch(ctx, imageSearchURL, searchURL)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []struct {
			Image     string `json:"image"`
			Thumbnail string `json:"thumbnail"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("error decodificando JSON: %w", err)
	}

	const minSize = 300
	images := []string{}
	for _, img := range result.Results {
		if img.Width < minSize || img.Height < minSize {
			continue
		}
		imageURL := img.Image
		if imageURL == "" {
			imageURL = img.Thumbnail
		}
		if imageURL != "" && strings.HasPrefix(imageURL, "http") {
			images = append(images, imageURL)
			if len(images) >= maxResults {
				break
			}
		}
	}
	return images, nil
}

// searchHTML es el plan B: parsea los <img> de una página de resultados de
// Bing Images, que sigue sirviendo HTML estático sin JS.
func (s *ImageScraper) searchHTML(ctx context.Context, query string, maxResults int) ([]string, error) {
	searchURL := fmt.Sprintf("https://www.bing.com/images/search?q=%s&safeSearch=strict", url.QueryEscape(query))

	body, err := s.fetch(ctx, searchURL, "")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	images := []string{}
	doc.Find("a.iusc").Each(func(i int, sel *goquery.Selection) {
		if len(images) >= maxResults {
			return
		}
		// Cada resultado lleva un JSON en el atributo m con la URL original.
		meta, ok := sel.Attr("m")
		if !ok {
			return
		}
		var m struct {
			MURL string `json:"murl"`
		}
		if err := json.Unmarshal([]byte(meta), &m); err != nil {
			return
		}
		if strings.HasPrefix(m.MURL, "http") && !seen[m.MURL] {
			seen[m.MURL] = true
			images = append(images, m.MURL)
		}
	})
	if len(images) == 0 {
		doc.Find("img[data-src], img[src]").Each(func(i int, sel *goquery.Selection) {
			if len(images) >= maxResults {
				return
			}
			src, ok := sel.Attr("data-src")
			if !ok {
				src, _ = sel.Attr("src")
			}
			if strings.HasPrefix(src, "http") && !seen[src] {
				seen[src] = true
				images = append(images, src)
			}
		})
	}
	return images, nil
}

func (s *ImageScraper) fetch(ctx context.Context, rawURL, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.8")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
