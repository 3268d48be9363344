package rod

// HTML fixtures shaped like the OrangeHRM pages the suite drives.
const (
	LoginHTML = `<!DOCTYPE html>
<html>
<head><title>OrangeHRM</title></head>
<body style="background:#f6f5fb">
	<div class="orangehrm-login-container">
		<h5 class="oxd-text oxd-text--h5">Login</h5>
		<form id="login" onsubmit="event.preventDefault(); login();">
			<input name="username" placeholder="Username" />
			<input name="password" type="password" placeholder="Password" />
			<button type="submit" class="oxd-button">Login</button>
		</form>
		<div id="alert"></div>
	</div>
	<script>
		function login() {
			const u = document.querySelector("input[name='username']").value;
			if (u === 'Admin') {
				localStorage.setItem('session', 'yes');
				document.cookie = 'orangehrm=abc';
				window.location.hash = 'dashboard';
				document.body.innerHTML = '<h6 class="oxd-topbar-header-breadcrumb-module">Dashboard</h6>';
			} else {
				document.getElementById('alert').innerHTML = '<p class="oxd-alert-content-text">Invalid credentials</p>';
			}
		}
	</script>
</body>
</html>`

	MenuHTML = `<!DOCTYPE html>
<html>
<body style="background:#fff">
	<ul>
		<li><a class="oxd-main-menu-item">Admin</a></li>
		<li><a class="oxd-main-menu-item">PIM</a></li>
		<li><a class="oxd-main-menu-item">Directory</a></li>
	</ul>
	<div id="hidden" style="display:none">secret</div>
	<span class="oxd-userdropdown-tab">Paul Collings</span>
</body>
</html>`

	ContentHTML = `<!DOCTYPE html>
<html>
<body style="margin:0; background:#7a7a7a; width: 1280px; height: 720px;">
	<h1>Dashboard</h1>
</body>
</html>`

	BlankHTML = `<!DOCTYPE html>
<html>
<body style="margin:0; background:#ffffff;"></body>
</html>`
)
