package render

var aboutPage = []string{
	"Welcome to Hacker News Over SSH",
	"--------------------------------",
	"Read Hacker News at the comfort of your terminal. This project provides",
	"a simple, terminal-based interface to browse Hacker News articles and comments.",
	"Source code is available at: https://github.com/adeekshith/hn-over-ssh",
	"",
	"About the Developer",
	"-------------------",
	"Developed by: Deekshith Allamaneni",
	"Contact:",
	"- Website: https://meet.deekshith.in",
	"- GitHub: https://github.com/adeekshith",
	"- Mastodon: https://techhub.social/@dsoft (@dsoft@techhub.social)",
	"- LinkedIn: https://www.linkedin.com/in/adeekshith",
}

var faqPage = []string{
	"FAQ - Frequently Asked Questions",
	"--------------------------------",
	"Q1: How do I navigate the stories?",
	"A1: Use the arrow keys to move through the list, Enter to open a story",
	"    and Esc to go back.",
	"",
	"Q2: How can I quit the application?",
	"A2: Press 'q' to quit the application at any time.",
	"",
	"Q3: Why does a story say it is unavailable?",
	"A3: The Hacker News API could not be reached and nothing was cached",
	"    yet. It will be fetched again the next time the screen is drawn.",
}
