/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for inference reports. Renders input and output cards, the rule
activation table, membership-curve charts and response-surface plots from embedded report data.
*/

package reporting

// reportTemplate is the HTML template for a report
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - SEMS Inference Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container {
            max-width: 1400px;
            margin: 0 auto;
            padding: 20px;
        }

        .header, .panel {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header {
            text-align: center;
        }

        .header h1 {
            color: #4a5568;
            font-size: 2.5rem;
            margin-bottom: 10px;
            font-weight: 700;
        }

        .header p, .panel p {
            color: #718096;
            font-size: 1.1rem;
        }

        .panel h2 {
            color: #4a5568;
            margin-bottom: 20px;
        }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }

        .stat-card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 15px;
            padding: 25px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .stat-card.output {
            border-left: 6px solid #48bb78;
        }

        .stat-card h3 {
            color: #4a5568;
            font-size: 1.2rem;
            margin-bottom: 15px;
        }

        .stat-card .value {
            font-size: 2.5rem;
            font-weight: 700;
            color: #2d3748;
            margin-bottom: 5px;
        }

        .stat-card .label {
            color: #718096;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }

        .charts-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(500px, 1fr));
            gap: 30px;
            margin-bottom: 30px;
        }

        .chart-container {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 15px;
            padding: 25px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .chart-container h3 {
            color: #4a5568;
            font-size: 1.3rem;
            margin-bottom: 20px;
            text-align: center;
        }

        .chart-wrapper {
            position: relative;
            height: 300px;
        }

        .surface-wrapper {
            height: 500px;
        }

        table.rules {
            width: 100%;
            border-collapse: collapse;
        }

        table.rules th, table.rules td {
            text-align: left;
            padding: 8px 12px;
            border-bottom: 1px solid #e2e8f0;
        }

        table.rules tr.fired td {
            background: #f0fff4;
            font-weight: 600;
        }

        .footer {
            text-align: center;
            color: rgba(255, 255, 255, 0.8);
            padding: 20px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM"}} | Session: <span id="session-id">{{.SessionID}}</span> | Version: {{.Version}}</p>
        </div>

        {{if .Outputs}}
        <div class="stats-grid" id="inputs">
            {{range .Inputs}}
            <div class="stat-card input" data-variable="{{.Variable}}">
                <h3>{{.Variable}}</h3>
                <div class="value">{{fmtValue .Value}}</div>
                <div class="label">{{.Unit}}</div>
            </div>
            {{end}}
        </div>

        <div class="stats-grid" id="outputs">
            {{range .Outputs}}
            <div class="stat-card output" data-variable="{{.Name}}">
                <h3>{{.Name}}</h3>
                <div class="value">{{fmtValue .Crisp}}</div>
                <div class="label">{{.Unit}}</div>
            </div>
            {{end}}
        </div>

        <div class="charts-grid" id="aggregated">
            {{range $i, $o := .Outputs}}
            <div class="chart-container">
                <h3>{{$o.Name}}: aggregated output</h3>
                <div class="chart-wrapper">
                    <canvas id="output-{{$i}}"></canvas>
                </div>
            </div>
            {{end}}
        </div>

        <div class="panel">
            <h2>Rule activations</h2>
            <table class="rules" id="rules">
                <thead>
                    <tr><th>#</th><th>Rule</th><th>Condition</th><th>Strength</th></tr>
                </thead>
                <tbody>
                    {{range .Rules}}
                    <tr class="{{if gt .Strength 0.0}}fired{{else}}idle{{end}}">
                        <td>{{.Index}}</td>
                        <td>{{.Name}}</td>
                        <td>{{.Text}}</td>
                        <td>{{percent .Strength}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .Surfaces}}
        <div class="charts-grid" id="surfaces">
            {{range $i, $s := .Surfaces}}
            <div class="chart-container">
                <h3>{{$s.Output}} over {{$s.X}} and {{$s.Y}}</h3>
                <p>{{range $s.Fixed}}{{.Variable}} = {{fmtValue .Value}} {{.Unit}}; {{end}}failed points: {{$s.Failures}}</p>
                <div class="surface-wrapper" id="surface-{{$i}}"></div>
            </div>
            {{end}}
        </div>
        {{end}}

        <div class="charts-grid" id="variables">
            {{range $i, $v := .Variables}}
            <div class="chart-container" data-role="{{$v.Role}}">
                <h3>{{$v.Name}}{{if $v.Unit}} ({{$v.Unit}}){{end}}</h3>
                <div class="chart-wrapper">
                    <canvas id="variable-{{$i}}"></canvas>
                </div>
            </div>
            {{end}}
        </div>
    </div>

    <div class="footer">
        <p>Smart Energy Management System - Fuzzy Inference Report</p>
    </div>

    <script>
        const report = {{.}};
        const palette = ['#4299e1', '#48bb78', '#ed8936', '#e53e3e', '#9f7aea', '#38b2ac'];

        function curveDatasets(points, curves) {
            return curves.map((c, i) => ({
                label: c.label,
                data: points.map((x, j) => ({x: x, y: c.degrees[j]})),
                borderColor: palette[i % palette.length],
                borderWidth: 1.5,
                pointRadius: 0,
                fill: false,
            }));
        }

        function lineChart(id, datasets, xTitle) {
            new Chart(document.getElementById(id), {
                type: 'line',
                data: {datasets: datasets},
                options: {
                    responsive: true,
                    maintainAspectRatio: false,
                    animation: false,
                    scales: {
                        x: {type: 'linear', title: {display: true, text: xTitle}},
                        y: {min: 0, max: 1.05, title: {display: true, text: 'membership'}},
                    },
                },
            });
        }

        if (window.Chart) {
            Chart.defaults.font.family = "'Segoe UI', Tahoma, Geneva, Verdana, sans-serif";
            Chart.defaults.color = '#4a5568';

            (report.variables || []).forEach((v, i) => {
                lineChart('variable-' + i, curveDatasets(v.points, v.curves), v.name);
            });

            (report.outputs || []).forEach((o, i) => {
                const datasets = curveDatasets(o.points, o.curves).map(d => Object.assign(d, {borderDash: [4, 4]}));
                datasets.push({
                    label: 'aggregated',
                    data: o.points.map((x, j) => ({x: x, y: o.aggregated[j]})),
                    borderColor: '#2d3748',
                    backgroundColor: 'rgba(45, 55, 72, 0.35)',
                    pointRadius: 0,
                    fill: 'origin',
                });
                datasets.push({
                    label: 'crisp ' + o.crisp.toFixed(2),
                    data: [{x: o.crisp, y: 0}, {x: o.crisp, y: 1}],
                    borderColor: '#e53e3e',
                    borderWidth: 3,
                    pointRadius: 0,
                });
                lineChart('output-' + i, datasets, o.name);
            });
        }

        if (window.Plotly) {
            (report.surfaces || []).forEach((s, i) => {
                Plotly.newPlot('surface-' + i, [{
                    type: 'surface',
                    x: s.x_values,
                    y: s.y_values,
                    z: s.values,
                    colorscale: 'Viridis',
                    cmin: s.min,
                    cmax: s.max,
                }], {
                    margin: {l: 0, r: 0, t: 0, b: 0},
                    scene: {
                        xaxis: {title: s.x},
                        yaxis: {title: s.y},
                        zaxis: {title: s.output},
                    },
                }, {responsive: true});
            });
        }

        document.body.dataset.rendered = 'true';
    </script>
</body>
</html>`
