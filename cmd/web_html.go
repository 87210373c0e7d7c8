package cmd

// comparePageHTML is the embedded single-page UI served at /.
const comparePageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Integrity Reporter</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #101216; color: #e6e6e6; }
  header { background: #1b1e26; padding: 16px 24px; border-bottom: 2px solid #7D56F4; }
  h1 { margin: 0; font-size: 20px; color: #b49cff; }
  main { max-width: 1100px; margin: 0 auto; padding: 24px; }
  .card { background: #1b1e26; border-radius: 8px; padding: 20px; margin-bottom: 20px; }
  label { display: block; margin: 10px 0 4px; color: #9aa0ae; font-size: 13px; }
  input[type=text] { width: 280px; padding: 6px 8px; background: #101216; color: #e6e6e6; border: 1px solid #333; border-radius: 4px; }
  button { background: #7D56F4; color: white; border: none; border-radius: 4px; padding: 8px 18px; cursor: pointer; margin-top: 14px; margin-right: 8px; }
  button:hover { background: #6a45e0; }
  table { border-collapse: collapse; width: 100%; margin-top: 10px; font-size: 13px; }
  th, td { border: 1px solid #2a2e3a; padding: 5px 9px; text-align: left; }
  th { background: #222632; color: #b49cff; }
  .warn { color: #FFA500; }
  .ok { color: #04B575; }
  #logs { background: #0b0d11; font-family: monospace; font-size: 12px; padding: 12px; height: 180px; overflow-y: auto; border-radius: 6px; }
  .log-ERROR { color: #ff6b6b; } .log-WARN { color: #FFA500; } .log-INFO { color: #8fd3a7; } .log-DEBUG { color: #6c7386; }
</style>
</head>
<body>
<header><h1>🔍 Integrity Reporter <span id="version" style="color:#6c7386;font-size:13px"></span></h1></header>
<main>
  <div class="card">
    <form id="compareForm">
      <label>Left dataset (csv, jsonl, parquet; optionally .zst/.lz4/.gz)</label>
      <input type="file" name="left" required>
      <label>Right dataset</label>
      <input type="file" name="right" required>
      <label>Key columns (comma-separated, empty = full-row hash)</label>
      <input type="text" name="keys" placeholder="id,region">
      <label><input type="checkbox" name="strict_decimal" value="true"> Strict decimal (5.00 &ne; 5)</label>
      <label><input type="checkbox" name="case_insensitive" value="true" checked> Case-insensitive</label>
      <label><input type="checkbox" name="drop_blank_rows" value="true" checked> Drop trailing blank rows</label>
      <button type="submit">Compare</button>
      <button type="button" id="downloadXlsx">Download spreadsheet</button>
    </form>
  </div>
  <div class="card" id="results" style="display:none">
    <h3>Results</h3>
    <div id="summary"></div>
    <div id="tables"></div>
  </div>
  <div class="card">
    <h3>Logs</h3>
    <div id="logs"></div>
  </div>
</main>
<script>
const form = document.getElementById('compareForm');

function formData(extra) {
  const data = new FormData(form);
  for (const k in (extra || {})) data.set(k, extra[k]);
  return data;
}

form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const resp = await fetch('/api/compare', { method: 'POST', body: formData() });
  if (!resp.ok) { alert(await resp.text()); return; }
  render(await resp.json());
});

document.getElementById('downloadXlsx').addEventListener('click', async () => {
  const resp = await fetch('/api/compare', { method: 'POST', body: formData({format: 'xlsx'}) });
  if (!resp.ok) { alert(await resp.text()); return; }
  const blob = await resp.blob();
  const a = document.createElement('a');
  a.href = URL.createObjectURL(blob);
  a.download = 'integrity-report.xlsx';
  a.click();
  URL.revokeObjectURL(a.href);
});

function esc(s) {
  return String(s).replace(/[&<>"]/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));
}

function datasetTable(ds, limit) {
  if (!ds || !ds.Records || ds.Records.length === 0) return '<p class="ok">none</p>';
  let html = '<table><tr>' + ds.Columns.map(c => '<th>' + esc(c) + '</th>').join('') + '</tr>';
  ds.Records.slice(0, limit).forEach(rec => {
    html += '<tr>' + ds.Columns.map(c => '<td>' + esc(rec[c] || '') + '</td>').join('') + '</tr>';
  });
  html += '</table>';
  if (ds.Records.length > limit) html += '<p class="warn">… ' + (ds.Records.length - limit) + ' more</p>';
  return html;
}

function render(report) {
  document.getElementById('results').style.display = '';
  const identical = report.missing_columns_in_right.length === 0 &&
    report.new_columns_in_right.length === 0 &&
    report.only_left_count === 0 && report.only_right_count === 0 &&
    report.cell_diff_count === 0;
  const alignment = report.hash_keyed ? 'full-row content hash' : 'keys: ' + report.key_columns.join(', ');
  document.getElementById('summary').innerHTML =
    '<p>' + (identical ? '<span class="ok">✅ Datasets are identical</span>' : '<span class="warn">⚠️ Differences found</span>') + '</p>' +
    '<table>' +
    '<tr><th>Left rows</th><td>' + report.left_rows + '</td><th>Right rows</th><td>' + report.right_rows + '</td></tr>' +
    '<tr><th>Row alignment</th><td colspan="3">' + esc(alignment) + '</td></tr>' +
    '<tr><th>Only in left</th><td>' + report.only_left_count + '</td><th>Only in right</th><td>' + report.only_right_count + '</td></tr>' +
    '<tr><th>Cell diffs</th><td>' + report.cell_diff_count + '</td><th>Duplicate keys</th><td>' + report.duplicate_keys_left + ' / ' + report.duplicate_keys_right + '</td></tr>' +
    '</table>';

  let html = '';
  if (report.missing_columns_in_right.length) {
    html += '<h4 class="warn">Columns missing in right</h4><p>' + report.missing_columns_in_right.map(esc).join(', ') + '</p>';
  }
  if (report.new_columns_in_right.length) {
    html += '<h4 class="warn">New columns in right</h4><p>' + report.new_columns_in_right.map(esc).join(', ') + '</p>';
  }
  html += '<h4>Rows only in left (' + report.only_left_count + ')</h4>' + datasetTable(report.only_in_left, 50);
  html += '<h4>Rows only in right (' + report.only_right_count + ')</h4>' + datasetTable(report.only_in_right, 50);
  if (report.cell_diffs && report.cell_diffs.length) {
    html += '<h4 class="warn">Cell differences</h4><table><tr><th>Row key</th><th>Column</th><th>Left</th><th>Right</th></tr>';
    report.cell_diffs.slice(0, 200).forEach(d => {
      html += '<tr><td>' + esc(d.row_key) + '</td><td>' + esc(d.column) + '</td><td>' + esc(d.left) + '</td><td>' + esc(d.right) + '</td></tr>';
    });
    html += '</table>';
  }
  document.getElementById('tables').innerHTML = html;
}

fetch('/api/status').then(r => r.json()).then(s => {
  let text = 'v' + s.version;
  if (s.updateAvailable) text += ' (update available: v' + s.latestVersion + ')';
  document.getElementById('version').textContent = text;
});

const logs = document.getElementById('logs');
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws/logs');
ws.onmessage = (e) => {
  const msg = JSON.parse(e.data);
  const line = document.createElement('div');
  line.className = 'log-' + msg.level;
  line.textContent = msg.timestamp + ' ' + msg.level + ' ' + msg.message;
  logs.appendChild(line);
  logs.scrollTop = logs.scrollHeight;
};
</script>
</body>
</html>
`
