package config

const DefaultFetchWindowDays = 7

const ExampleConfig = `fetch_window_days: 7
channels:
  - name: "Channel Name"
    id: "UCxxxxxxxxxxxxxxxxxxxxxx"
`
