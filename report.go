package main

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/pranegit/yearly-chart/internal/chart"
)

// reportPage is everything the html page needs: the committed svg, the caption and the data
// the inline script uses to replay hover on the precomputed points.
type reportPage struct {
	Title   string
	Markup  string
	Note    string
	Tooltip chart.Tooltip
	Hover   *hoverData
}

// hoverData mirrors the scene geometry for the browser side
type hoverData struct {
	FocusID    string             `json:"focusId"`
	OverlayID  string             `json:"overlayId"`
	ViewWidth  float64            `json:"viewWidth"`
	ViewHeight float64            `json:"viewHeight"`
	MarginLeft float64            `json:"marginLeft"`
	MarginTop  float64            `json:"marginTop"`
	X          chart.Linear       `json:"x"`
	Points     []chart.ScenePoint `json:"points"`
}

// pageFromSurface snapshots what the surface currently shows
func pageFromSurface(title string, surf *chart.MemorySurface) reportPage {
	page := reportPage{
		Title:   title,
		Markup:  surf.Markup(),
		Note:    surf.Note(),
		Tooltip: surf.Tooltip(),
	}
	if sc := surf.Scene(); sc != nil {
		page.Hover = &hoverData{
			FocusID:    sc.FocusID,
			OverlayID:  sc.OverlayID,
			ViewWidth:  sc.Layout.Width,
			ViewHeight: sc.Layout.Height,
			MarginLeft: sc.Layout.Margin.Left,
			MarginTop:  sc.Layout.Margin.Top,
			X:          sc.X,
			Points:     sc.Points,
		}
	}
	return page
}

// GenerateHTMLReport writes a standalone page with the chart, its caption and the tooltip
func GenerateHTMLReport(path string, page reportPage) error {
	doc, err := renderReportHTML(page)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func renderReportHTML(page reportPage) (string, error) {
	title := page.Title
	if title == "" {
		title = "Projects per year"
	}

	var sb strings.Builder
	sb.WriteString("<!doctype html><html><head><meta charset='utf-8'>")
	sb.WriteString("<meta name='viewport' content='width=device-width,initial-scale=1'>")
	sb.WriteString("<title>" + html.EscapeString(title) + "</title>")
	sb.WriteString(`<style>
body{font-family:Arial,Helvetica,sans-serif;margin:24px;color:#101828;background:#fff}
h1{font-size:1.3em;margin:0 0 12px}
#area-chart{position:relative;width:100%;max-width:1200px}
#area-chart svg{width:100%;height:auto;display:block}
#chart-note{margin-top:8px;font-size:0.9em;color:#475467}
.chart-tooltip{position:absolute;pointer-events:none;background:#05293c;color:#fff;padding:4px 8px;border-radius:4px;font-size:12px;white-space:nowrap}
</style></head><body>`)
	sb.WriteString("<h1>" + html.EscapeString(title) + "</h1>")

	// svg markup is already escaped by the scene serializer
	sb.WriteString("<div id='area-chart'>")
	sb.WriteString(page.Markup)
	tipStyle := "display:none"
	if page.Tooltip.Visible && page.Hover != nil {
		tipStyle = fmt.Sprintf("display:block;left:%s;top:%s",
			pct(page.Tooltip.X, page.Hover.ViewWidth), pct(page.Tooltip.Y, page.Hover.ViewHeight))
	}
	sb.WriteString("<div id='chart-tooltip' class='chart-tooltip' style='" + tipStyle + "'>" +
		html.EscapeString(page.Tooltip.Text) + "</div>")
	sb.WriteString("</div>")
	sb.WriteString("<div id='chart-note'>" + html.EscapeString(page.Note) + "</div>")

	if page.Hover != nil {
		data, err := json.Marshal(page.Hover)
		if err != nil {
			return "", fmt.Errorf("encode hover data: %w", err)
		}
		// json.Marshal escapes <, > and &, so the payload cannot close the script element
		sb.WriteString("<script>const chartData = ")
		sb.Write(data)
		sb.WriteString(";</script>")
		sb.WriteString(hoverScript)
	}
	sb.WriteString("</body></html>")
	return sb.String(), nil
}

// pct places an svg coordinate as a percentage of the responsive container, so a pinned
// tooltip stays next to its point at any page width.
func pct(v, extent float64) string {
	if extent <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.3f%%", v/extent*100)
}

// hoverScript replays the pointer rules: nearest year by x only, ties go to the earlier year,
// the focus label and the tooltip always show the same text.
const hoverScript = `<script>
(function(){
  const d = chartData;
  const root = document.getElementById("area-chart");
  const svg = root.querySelector("svg");
  const overlay = document.getElementById(d.overlayId);
  const focus = document.getElementById(d.focusId);
  const tooltip = document.getElementById("chart-tooltip");
  if(!svg || !overlay || !focus) return;
  const label = focus.querySelector("text");
  let hover = false;

  // helper: svg units per css pixel, the svg scales with its container
  function scale(){
    const r = svg.getBoundingClientRect();
    return r.width > 0 ? d.viewWidth / r.width : 1;
  }
  function invert(px){
    const x = d.x;
    if(x.d1 === x.d0 || x.r1 === x.r0) return x.d0;
    return x.d0 + (px - x.r0) / (x.r1 - x.r0) * (x.d1 - x.d0);
  }
  function nearest(year){
    let best = -1;
    for(let i=0;i<d.points.length;i++){
      if(best < 0 || Math.abs(d.points[i].year - year) < Math.abs(d.points[best].year - year)) best = i;
    }
    return best;
  }
  function show(p){
    focus.setAttribute("transform", "translate(" + p.x + "," + p.y + ")");
    label.textContent = p.label;
    focus.setAttribute("display", hover ? "inline" : "none");
    const k = scale();
    tooltip.textContent = p.label;
    tooltip.style.left = ((d.marginLeft + p.x + 12) / k) + "px";
    tooltip.style.top = ((d.marginTop + p.y + 12) / k) + "px";
    tooltip.style.display = hover ? "block" : "none";
  }
  overlay.addEventListener("mouseenter", function(){
    hover = true;
    focus.setAttribute("display", "inline");
    tooltip.style.display = tooltip.textContent ? "block" : "none";
  });
  overlay.addEventListener("mousemove", function(e){
    const r = svg.getBoundingClientRect();
    const px = (e.clientX - r.left) * scale() - d.marginLeft;
    const i = nearest(invert(px));
    if(i >= 0) show(d.points[i]);
  });
  overlay.addEventListener("mouseleave", function(){
    hover = false;
    focus.setAttribute("display", "none");
    tooltip.style.display = "none";
  });
  // a pinned focus from the command line keeps its place after layout
  if(tooltip.style.display === "block"){
    for(const p of d.points){
      if(p.label === tooltip.textContent){ hover = true; show(p); break; }
    }
  }
})();
</script>`
