package fixture

const indexPage = `<!DOCTYPE html>
<html>
<head>
	<title>Browser Automation Fixtures</title>
</head>
<body>
	<h1>Browser Automation Fixtures</h1>
	<ul>
		<li><a href="/dynamic_disclose">dynamic disclose</a></li>
		<li><a href="/form">form</a></li>
		<li><a href="/selector_playground">selector playground</a></li>
		<li><a href="/basic_auth">basic auth</a></li>
		<li><a href="/hidden">hidden</a></li>
		<li><a href="/shadow">shadow</a></li>
	</ul>
	<form>
		<label for="input_id">input_label</label>
		<input id="input_id" name="input_name">
	</form>
</body>
</html>
`

const dynamicDisclosePage = `<!DOCTYPE html>
<html>
<head>
	<title>Dynamic Disclose</title>
</head>
<body>
	<div id=container>
		<div id=outer>
			Container
			<div id=inner>
			</div>
		</div>
	</div>
	<button onclick=trigger()>Trigger</button>
	<script>
	function trigger() {
		var div = document.querySelectorAll('#container')[0]
		setTimeout(function() {
			div.innerHTML = "<div id=outer><div id=inner>fnord</div></div>"
		}, 1000)
	}
	</script>
</body>
</html>
`

const formPage = `<!DOCTYPE html>
<html>
<head>
	<title>Form</title>
</head>
<body>
	<form action="/form">
		<label for="first_name">First name</label>
		<input id="first_name" name="first_name" type="text">
		<label>
			Last name
			<input id="last_name" name="last_name" type="text">
		</label>
		<input id="email" name="email" type="email" placeholder="your@email">
		<button type="submit">Submit</button>
	</form>
</body>
</html>
`

const selectorPlaygroundPage = `<!DOCTYPE html>
<html>
<head>
	<title>Selector Playground</title>
</head>
<body>
	<label for="input_id">input_label</label><input id="input_id" class="input_class" name="input_name" placeholder="input_placeholder" value="input_value">
</body>
</html>
`

const hiddenPage = `<!DOCTYPE html>
<html>
<head>
	<title>Hidden</title>
</head>
<body>
	<div id="visible">Visible</div>
	<div id="hidden" style="display: none">Hidden</div>
	<input id="hidden_input" type="hidden" value="secret">
	<button id="reveal" onclick="reveal()">Reveal</button>
	<script>
	function reveal() {
		setTimeout(function() {
			document.getElementById('hidden').style.display = 'block'
		}, 1000)
	}
	</script>
</body>
</html>
`

const shadowPage = `<!DOCTYPE html>
<html>
<head>
	<title>Shadow</title>
</head>
<body>
	<div id="light">Outside the shadow</div>
	<shadow-host id="shadow_host"></shadow-host>
	<script>
	customElements.define('shadow-host', class extends HTMLElement {
		constructor() {
			super()
			var root = this.attachShadow({mode: 'open'})
			root.innerHTML = '<div id="shadow_content">Inside the shadow</div>' +
				'<input id="shadow_input" value="shadow_value">'
		}
	})
	</script>
</body>
</html>
`

// Bodies of the basic auth page, wrapped in <html><body> when served.
const (
	UnauthenticatedBody = "You need to authenticate"
	AuthenticatedBody   = "Authenticated"
)
