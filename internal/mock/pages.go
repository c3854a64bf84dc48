package mock

import (
	"html/template"
	"io"
)

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html><head><title>Game {{.GameID}}</title></head>
<body>
<dl id="gameSummary">
  <dt>Game ID</dt><dd id="gameId">{{.GameID}}</dd>
  <dt>Final Score</dt><dd id="finalScore">{{.FinalScore}}</dd>
  <dt>Lives Left</dt><dd id="livesLeft">{{.LivesLeft}}</dd>
  <dt>Achieved Goal</dt><dd id="achievedGoal">{{.AchievedGoal}}</dd>
  <dt>Finished At</dt><dd id="finishedAt">{{.FinishedAt.Format "2006-01-02 15:04:05"}}</dd>
</dl>
<table id="processedMessagesTable">
<thead><tr><th>Ad ID</th><th>Message</th><th>Turn</th><th>Reward</th><th>Success</th></tr></thead>
<tbody>
{{- range .Messages}}
<tr class="clickable-row" data-adid="{{.AdID}}" data-message="{{.Message}}" data-turn="{{.Turn}}" data-reward="{{.Reward}}" data-success="{{.Success}}" data-failurereason="{{.FailureReason}}">
  <td>{{.AdID}}</td><td>{{.Message}}</td><td>{{.Turn}}</td><td>{{.Reward}}</td><td>{{.Success}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body></html>
`))

var historyTmpl = template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html><head><title>Game History</title></head>
<body>
<table id="gameHistoryTable">
<thead><tr><th>Game ID</th><th>Score</th><th>Lives</th><th>Goal</th><th>Finished</th></tr></thead>
<tbody>
{{- range .Results}}
<tr class="clickable-row" data-gameid="{{.GameID}}">
  <td>{{.GameID}}</td><td>{{.FinalScore}}</td><td>{{.LivesLeft}}</td><td>{{.AchievedGoal}}</td><td>{{.FinishedAt.Format "2006-01-02 15:04:05"}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{- if .HasNext}}
<a rel="next" href="?page={{.Next}}&size={{.Size}}">Next</a>
{{- end}}
</body></html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html><head><title>Error</title></head>
<body><p id="errorMessage">{{.}}</p></body></html>
`))

type historyView struct {
	Results []*Result
	HasNext bool
	Next    int
	Size    int
}

func renderResult(w io.Writer, r *Result) error {
	return resultTmpl.Execute(w, r)
}

func renderHistory(w io.Writer, v historyView) error {
	return historyTmpl.Execute(w, v)
}

func renderError(w io.Writer, msg string) error {
	return errorTmpl.Execute(w, msg)
}
