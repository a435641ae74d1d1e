package dashboard

// indexHTML is the embedded dashboard page: a search box filtering results by
// tool name or type, a run button, and a list that fills in as records arrive
// on the event stream.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Tool Conformance Dashboard</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem auto; max-width: 960px; color: #222; }
  h1 { font-size: 1.4rem; }
  #controls { display: flex; gap: .5rem; margin-bottom: 1rem; }
  #search { flex: 1; padding: .5rem; font-size: 1rem; }
  #run { padding: .5rem 1.2rem; font-size: 1rem; cursor: pointer; }
  details { border: 1px solid #ddd; border-radius: 6px; margin: .4rem 0; padding: .4rem .8rem; }
  summary { cursor: pointer; font-family: monospace; }
  pre { background: #f6f6f6; padding: .6rem; overflow-x: auto; font-size: .85rem; }
  #summary { color: #555; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Tool Conformance Dashboard</h1>
<div id="controls">
  <input id="search" type="text" placeholder="Filter by tool name or type...">
  <button id="run">Run Tool Tests</button>
</div>
<div id="results"></div>
<div id="summary"></div>
<script>
const icons = { success: "✅", error: "❌", unknown: "\u{1F937}" };
const results = [];

function matches(rec, q) {
  if (!q) return true;
  q = q.toLowerCase();
  return (rec.name || "").toLowerCase().includes(q) ||
         (rec.type || "").toLowerCase().includes(q);
}

function render() {
  const q = document.getElementById("search").value;
  const root = document.getElementById("results");
  root.innerHTML = "";
  for (const rec of results) {
    if (!matches(rec, q)) continue;
    const status = rec.status || "unknown";
    const el = document.createElement("details");
    el.innerHTML =
      "<summary>" + (icons[status] || "❔") + " " + rec.name +
      " (" + (rec.type || "n/a") + ") - " + status.toUpperCase() + "</summary>" +
      "<p>" + (rec.description || "") + "</p>" +
      "<b>Parameters</b><pre>" + JSON.stringify(rec.parameters || {}, null, 2) + "</pre>" +
      "<b>Input</b><pre>" + JSON.stringify(rec.input || {}, null, 2) + "</pre>" +
      "<b>Output</b><pre>" + JSON.stringify(rec.output ?? rec.error ?? null, null, 2) + "</pre>";
    root.appendChild(el);
  }
}

document.getElementById("search").addEventListener("input", render);
document.getElementById("run").addEventListener("click", () => {
  results.length = 0;
  render();
  document.getElementById("summary").textContent = "Running...";
  const es = new EventSource("/events");
  es.onmessage = (ev) => {
    results.push(JSON.parse(ev.data));
    render();
  };
  es.addEventListener("done", (ev) => {
    const n = JSON.parse(ev.data).tested;
    document.getElementById("summary").textContent = "Finished testing " + n + " tools.";
    es.close();
  });
  es.onerror = () => {
    document.getElementById("summary").textContent = "Stream interrupted.";
    es.close();
  };
});
</script>
</body>
</html>
`
