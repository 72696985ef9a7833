package render

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/TFMV/forcegraph/errors"
)

// HTMLRenderer outputs a self-contained page that draws scenes on a canvas.
// With OutputOptions.WebSocketPath set the page becomes a live view: it
// streams pointer events to the server and draws every scene it receives.
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders an interactive canvas page, live when connected to forcegraph serve"
}

// ContentType returns the MIME type of the output
func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type htmlPage struct {
	Title      string
	Background string
	Scene      template.JS
	WSPath     string
	ShowLabels bool
}

// Render creates the page with the scene embedded as its first frame
func (r *HTMLRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	data, err := json.Marshal(scene)
	if err != nil {
		return nil, errors.Wrap(err, "marshal scene")
	}
	title := scene.Title
	if title == "" {
		title = "forcegraph"
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, htmlPage{
		Title:      title,
		Background: scene.Background,
		Scene:      template.JS(data),
		WSPath:     options.WebSocketPath,
		ShowLabels: options.ShowLabels,
	})
	if err != nil {
		return nil, errors.Wrap(err, "execute page template")
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body, html { margin: 0; padding: 0; height: 100%; overflow: hidden; background: {{.Background}}; }
  canvas { display: block; width: 100%; height: 100%; cursor: default; }
  #status { position: fixed; left: 8px; bottom: 6px; font: 11px monospace; color: #94a3b8; }
</style>
</head>
<body>
<canvas id="view"></canvas>
<div id="status"></div>
<script>
(function () {
  const canvas = document.getElementById('view');
  const ctx = canvas.getContext('2d');
  const status = document.getElementById('status');
  const showLabels = {{.ShowLabels}};
  const wsPath = {{.WSPath}};
  let scene = {{.Scene}};

  function draw() {
    const dpr = window.devicePixelRatio || 1;
    ctx.setTransform(dpr, 0, 0, dpr, 0, 0);
    ctx.fillStyle = scene.background;
    ctx.fillRect(0, 0, canvas.width, canvas.height);
    for (const e of scene.edges || []) {
      ctx.globalAlpha = e.opacity;
      ctx.strokeStyle = e.color;
      ctx.lineWidth = e.width;
      ctx.beginPath();
      ctx.moveTo(e.x1, e.y1);
      ctx.lineTo(e.x2, e.y2);
      ctx.stroke();
    }
    ctx.globalAlpha = 1;
    for (const n of scene.nodes || []) {
      ctx.beginPath();
      ctx.arc(n.x, n.y, n.r, 0, 2 * Math.PI);
      ctx.fillStyle = n.fill;
      ctx.fill();
      ctx.strokeStyle = n.stroke;
      ctx.lineWidth = n.strokeWidth;
      ctx.stroke();
      if (showLabels && n.label) {
        ctx.fillStyle = scene.labelColor;
        ctx.font = '500 ' + n.fontSize + 'px sans-serif';
        ctx.textAlign = 'center';
        ctx.fillText(n.label, n.labelX, n.labelY);
      }
    }
    status.textContent = 'tick ' + scene.tick + (scene.settled ? ' (settled)' : '');
  }

  function resize() {
    const dpr = window.devicePixelRatio || 1;
    canvas.width = canvas.clientWidth * dpr;
    canvas.height = canvas.clientHeight * dpr;
    send({type: 'resize', width: canvas.clientWidth, height: canvas.clientHeight});
    draw();
  }

  let ws = null;
  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  if (wsPath) {
    const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    ws = new WebSocket(proto + location.host + wsPath + location.search);
    ws.onopen = resize;
    ws.onmessage = (ev) => {
      const msg = JSON.parse(ev.data);
      if (msg.type === 'scene') { scene = msg.scene; draw(); }
      else if (msg.type === 'activated') { status.textContent = 'selected ' + msg.activation.id; }
      else if (msg.type === 'error') { status.textContent = msg.message; }
      else if (msg.type === 'hello' && msg.diagnostics) { status.textContent = msg.diagnostics.length + ' records skipped'; }
    };
    ws.onclose = () => { status.textContent = 'disconnected'; };

    const pos = (ev) => { const r = canvas.getBoundingClientRect(); return {x: ev.clientX - r.left, y: ev.clientY - r.top}; };
    canvas.addEventListener('pointermove', (ev) => send(Object.assign({type: 'pointermove'}, pos(ev))));
    canvas.addEventListener('pointerdown', (ev) => { canvas.setPointerCapture(ev.pointerId); send(Object.assign({type: 'pointerdown'}, pos(ev))); });
    canvas.addEventListener('pointerup', (ev) => send(Object.assign({type: 'pointerup'}, pos(ev))));
    canvas.addEventListener('pointerleave', () => send({type: 'pointerleave'}));
    canvas.addEventListener('wheel', (ev) => { ev.preventDefault(); send(Object.assign({type: 'wheel', deltaY: ev.deltaY}, pos(ev))); }, {passive: false});
  }

  window.addEventListener('resize', resize);
  resize();
})();
</script>
</body>
</html>
`))
