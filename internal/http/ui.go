package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Fiber Ring Topology</title>
  <script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
  <style>
    :root {
      --brand: #0e5d8f;
      --brand-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --head: #f0f0f0;
      --ok-bg: #dff0d8;
      --ok-text: #3c763d;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }

    * { box-sizing: border-box; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      line-height: 1.42857143;
    }

    header {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      border-bottom: 1px solid #0b4e79;
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }

    .container {
      margin: 0 auto;
      padding: 0 15px;
      width: 100%;
      max-width: 1680px;
    }

    .header-inner {
      min-height: 64px;
      display: flex;
      align-items: center;
      justify-content: space-between;
      gap: 16px;
    }

    .navbar-brand { color: #fff; font-size: 22px; font-weight: 300; }
    .navbar-brand strong { font-weight: 600; }
    .navbar-note { color: rgba(255, 255, 255, 0.88); font-size: 13px; text-align: right; }

    main { padding: 18px 0 32px; }

    .panel {
      background: var(--paper);
      border: 1px solid var(--line);
      margin-bottom: 16px;
    }

    .panel-heading {
      background: var(--head);
      border-bottom: 1px solid var(--line);
      padding: 8px 12px;
      font-weight: 600;
      display: flex;
      justify-content: space-between;
      align-items: center;
      gap: 12px;
    }

    .panel-body { padding: 12px; }

    form.inline { display: flex; flex-wrap: wrap; gap: 8px; align-items: center; }
    input[type=text], select { padding: 5px 8px; border: 1px solid #ccc; font-size: 13px; }
    input[type=text] { min-width: 240px; }

    button {
      border: 1px solid var(--brand);
      background: var(--brand);
      color: #fff;
      padding: 5px 12px;
      font-size: 13px;
      cursor: pointer;
    }

    .pill { display: inline-block; padding: 2px 8px; font-size: 12px; border-radius: 10px; }
    .pill.ok { background: var(--ok-bg); color: var(--ok-text); }
    .pill.bad { background: var(--bad-bg); color: var(--bad-text); }
    .muted { color: var(--muted); }

    .ring-canvas { position: relative; height: 640px; border-top: 1px solid var(--line); }
    .ring-canvas .net { width: 100%; height: 100%; }
    .node-search {
      position: absolute;
      top: 10px;
      left: 10px;
      z-index: 5;
      min-width: 200px;
    }

    table { width: 100%; border-collapse: collapse; font-size: 12px; }
    th, td { border: 1px solid var(--line); padding: 4px 6px; text-align: left; }
    th { background: var(--head); }

    .legend span { margin-right: 12px; font-size: 12px; }
    .legend i { display: inline-block; width: 10px; height: 10px; margin-right: 4px; border: 1px solid #333; }
  </style>
</head>
<body>
  <header>
    <div class="container header-inner">
      <div class="navbar-brand"><strong>Fiber</strong> Ring Topology</div>
      <div class="navbar-note" id="datasetNote">loading dataset status...</div>
    </div>
  </header>

  <main class="container">
    <div class="panel">
      <div class="panel-heading">Search</div>
      <div class="panel-body">
        <form class="inline" id="searchForm">
          <select id="field">
            <option value="site">Site ID</option>
            <option value="ring">Ring ID</option>
            <option value="host">Host Name</option>
            <option value="vendor">FLP Vendor</option>
          </select>
          <input type="text" id="q" placeholder="Search..." autocomplete="off" />
          <select id="scope">
            <option value="ring">Whole ring</option>
            <option value="matched">Matched links only</option>
          </select>
          <select id="layout">
            <option value="">Default layout</option>
            <option value="zigzag">Zig-zag</option>
            <option value="plain">Plain grid</option>
          </select>
          <button type="submit">Show topology</button>
          <span class="legend" id="legend"></span>
        </form>
        <div id="searchMessage" class="muted" style="margin-top:8px"></div>
      </div>
    </div>

    <div id="rings"></div>

    <div class="panel">
      <div class="panel-heading"><span>Links</span><span class="muted" id="linksMeta"></span></div>
      <div class="panel-body" style="overflow:auto; max-height:420px">
        <table>
          <thead>
            <tr><th>Ring ID</th><th>Site ID</th><th>Destination</th><th>Fiber Type</th><th>Site Name</th><th>Destination Name</th><th>Host Name</th><th>Vendor</th><th>Length</th></tr>
          </thead>
          <tbody id="linksBody"></tbody>
        </table>
      </div>
    </div>

    <div class="panel">
      <div class="panel-heading">Upload dataset</div>
      <div class="panel-body">
        <form class="inline" id="uploadForm">
          <input type="file" name="file" accept=".csv,.xlsx,.xlsm" required />
          <input type="text" name="sheet" placeholder="Sheet (optional)" />
          <input type="text" name="name" placeholder="Name (optional)" />
          <button type="submit">Upload and activate</button>
        </form>
        <div id="uploadMessage" class="muted" style="margin-top:8px"></div>
      </div>
    </div>
  </main>

  <script>
    function esc(v) {
      return String(v == null ? '' : v)
        .replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;').replace(/"/g, '&quot;');
    }

    async function getJSON(url) {
      const r = await fetch(url);
      const body = await r.json().catch(() => ({}));
      if (!r.ok) {
        const err = new Error(body.error || ('HTTP ' + r.status));
        err.body = body;
        throw err;
      }
      return body;
    }

    function tooltipElement(html) {
      const el = document.createElement('div');
      el.innerHTML = html;
      return el;
    }

    async function loadStatus() {
      try {
        const body = await getJSON('/api/v1/status/services');
        const ds = body.services.dataset;
        const note = document.getElementById('datasetNote');
        if (ds.ok) {
          note.innerHTML = '<span class="pill ok">dataset</span> ' + esc(ds.stats.source) + ' &middot; ' +
            ds.stats.records + ' links &middot; ' + ds.stats.rings + ' rings';
          if (ds.stats.pinned) {
            note.innerHTML += ' &middot; pinned <button type="button" id="resumeSource">Resume source</button>';
            document.getElementById('resumeSource').addEventListener('click', resumeSource);
          }
        } else {
          note.innerHTML = '<span class="pill bad">dataset</span> ' + esc(ds.error);
        }
      } catch (e) {
        document.getElementById('datasetNote').textContent = 'status unavailable';
      }
    }

    async function resumeSource() {
      const res = await fetch('/api/v1/reload', { method: 'POST' });
      const body = await res.json().catch(() => ({}));
      if (!res.ok) alert(body.error || ('HTTP ' + res.status));
      loadStatus();
    }

    async function loadLegend() {
      try {
        const body = await getJSON('/api/v1/styles');
        const parts = [];
        for (const [kind, s] of Object.entries(body.data)) {
          parts.push('<span><i style="background:' + esc(s.color) + '"></i>' + esc(kind) + '</span>');
        }
        document.getElementById('legend').innerHTML = parts.join('');
      } catch (e) { /* legend is optional */ }
    }

    function attachNodeSearch(input, nodes, network) {
      input.addEventListener('keyup', (event) => {
        if (event.key !== 'Enter') return;
        const query = input.value.trim();
        if (!query) return;
        const found = nodes.get().find((n) => n.label.includes(query));
        if (found) {
          network.selectNodes([found.id]);
          network.focus(found.id, { scale: 1.5, animation: true });
        } else {
          alert('Site ID not found!');
        }
      });
    }

    function renderRing(container, graph) {
      const panel = document.createElement('div');
      panel.className = 'panel';
      const conflicts = graph.conflicts.length
        ? ' &middot; <span class="pill bad">' + graph.conflicts.length + ' attribute conflicts</span>'
        : '';
      panel.innerHTML = '<div class="panel-heading"><span>Ring ' + esc(graph.ring_id) + '</span>' +
        '<span class="muted">' + graph.nodes.length + ' nodes &middot; ' + graph.edges.length + ' links' + conflicts + '</span></div>' +
        '<div class="ring-canvas"><input type="text" class="node-search" placeholder="Find Site ID..." /><div class="net"></div></div>';
      container.appendChild(panel);

      const nodes = new vis.DataSet(graph.nodes.map((n) => ({
        id: n.id,
        label: n.label,
        title: tooltipElement(n.tooltip),
        x: n.position.x,
        y: n.position.y,
        shape: n.style.shape,
        size: n.style.size,
        color: { background: n.style.color, border: n.style.border },
      })));
      const edges = new vis.DataSet(graph.edges.map((e, i) => ({
        id: i,
        from: e.from,
        to: e.to,
        label: e.length_label,
        title: tooltipElement(e.tooltip),
        width: e.style.width,
        color: e.style.color,
      })));

      const network = new vis.Network(panel.querySelector('.net'), { nodes, edges }, {
        physics: false,
        interaction: { hover: true, multiselect: true },
        nodes: { font: { size: 12, multi: false } },
        edges: { smooth: false, font: { size: 11, align: 'top' } },
      });
      attachNodeSearch(panel.querySelector('.node-search'), nodes, network);
    }

    function renderLinks(body) {
      const rows = body.data.map((r) => '<tr><td>' + [
        r.ring_id, r.source_id, r.destination_id, r.fiber_type, r.source_name,
        r.destination_name, r.hostname, r.vendor, r.length,
      ].map(esc).join('</td><td>') + '</td></tr>');
      document.getElementById('linksBody').innerHTML = rows.join('');
      document.getElementById('linksMeta').textContent = body.meta.count + ' of ' + body.meta.total;
    }

    async function runSearch(event) {
      if (event) event.preventDefault();
      const params = new URLSearchParams({
        field: document.getElementById('field').value,
        q: document.getElementById('q').value.trim(),
        scope: document.getElementById('scope').value,
      });
      const layout = document.getElementById('layout').value;
      if (layout) params.set('layout', layout);

      const message = document.getElementById('searchMessage');
      const rings = document.getElementById('rings');
      rings.innerHTML = '';
      message.textContent = 'loading...';

      try {
        const topo = await getJSON('/api/v1/topology?' + params.toString());
        message.textContent = topo.meta.message ||
          (topo.meta.rings + ' ring(s), ' + topo.meta.count + ' matching link(s)');
        topo.data.forEach((g) => renderRing(rings, g));

        const links = await getJSON('/api/v1/links?' + params.toString() + '&limit=500');
        renderLinks(links);
      } catch (e) {
        const missing = e.body && e.body.missing ? ' (missing: ' + e.body.missing.join(', ') + ')' : '';
        message.textContent = e.message + missing;
      }
    }

    async function upload(event) {
      event.preventDefault();
      const message = document.getElementById('uploadMessage');
      message.textContent = 'uploading...';
      const res = await fetch('/api/v1/datasets', { method: 'POST', body: new FormData(event.target) });
      const body = await res.json().catch(() => ({}));
      if (!res.ok) {
        const missing = body.missing ? ' (missing: ' + body.missing.join(', ') + ')' : '';
        message.textContent = (body.error || ('HTTP ' + res.status)) + missing;
        return;
      }
      message.textContent = 'activated ' + body.data.snapshot.name + ' with ' + body.data.records + ' links';
      loadStatus();
    }

    document.getElementById('searchForm').addEventListener('submit', runSearch);
    document.getElementById('uploadForm').addEventListener('submit', upload);
    loadStatus();
    loadLegend();
  </script>
</body>
</html>
`
